package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/internal/address"
	"github.com/angelmondragon/ovenly-backend/internal/cart"
	"github.com/angelmondragon/ovenly-backend/internal/catalog"
	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/internal/orders"
	"github.com/angelmondragon/ovenly-backend/internal/stock"
	"github.com/angelmondragon/ovenly-backend/internal/vendors"
	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

type sent struct {
	userID uuid.UUID
	kind   enums.NotificationType
}

type recordingNotifier struct {
	sent []sent
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, event notifications.Event) error {
	r.sent = append(r.sent, sent{userID: userID, kind: event.Type})
	return r.err
}

type harness struct {
	svc      Service
	carts    cart.Service
	conn     *gorm.DB
	fx       *dbtest.Fixtures
	notifier *recordingNotifier
	reg      *prometheus.Registry
}

type option func(d *Deps, conn *gorm.DB)

func withFees(f FeePolicy) option {
	return func(d *Deps, _ *gorm.DB) { d.Fees = f }
}

// withFailingDecrement makes the ledger fail for productID with err.
func withFailingDecrement(productID uuid.UUID, err error) option {
	return func(d *Deps, conn *gorm.DB) {
		d.Stock = flakyLedger{inner: stock.NewLedger(conn), fail: productID, err: err}
	}
}

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	client := db.NewFromConn(conn)
	notifier := &recordingNotifier{}
	reg := prometheus.NewRegistry()

	deps := Deps{
		Tx:        client,
		Carts:     cart.NewRepository(conn),
		Orders:    orders.NewRepository(conn),
		Products:  catalog.NewRepository(conn),
		Addresses: address.NewRepository(conn),
		Vendors:   vendors.NewRepository(conn),
		Stock:     stock.NewLedger(conn),
		Notifier:  notifier,
		Metrics:   metrics.NewOrderMetrics(reg),
	}
	for _, opt := range opts {
		opt(&deps, conn)
	}
	svc, err := NewService(deps)
	require.NoError(t, err)

	carts, err := cart.NewService(cart.NewRepository(conn), client, catalog.NewRepository(conn))
	require.NoError(t, err)

	return &harness{svc: svc, carts: carts, conn: conn, fx: dbtest.NewFixtures(t, conn), notifier: notifier, reg: reg}
}

func (h *harness) bakeryProduct(t *testing.T, bakeryID uuid.UUID, price string, stockQty *int) models.Product {
	t.Helper()
	return h.fx.Product(func(p *models.Product) {
		p.BakeryID = &bakeryID
		p.Price = decimal.RequireFromString(price)
		p.StockQuantity = stockQty
	})
}

func (h *harness) add(t *testing.T, userID uuid.UUID, productID uuid.UUID, qty int) {
	t.Helper()
	_, err := h.carts.AddItem(context.Background(), userID, cart.AddItemInput{ProductID: &productID, Quantity: qty})
	require.NoError(t, err)
}

func (h *harness) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&n).Error)
	return n
}

func pickupCash() Input {
	return Input{Pickup: true, PaymentMethod: "cash"}
}

func requireField(t *testing.T, err error, code pkgerrors.Code, field string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), "unexpected error %v", err)
	if field != "" {
		require.NotEmpty(t, typed.Fields())
		assert.Equal(t, field, typed.Fields()[0].Field)
	}
}

func TestCreateOrderFromCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner, customer := uuid.New(), uuid.New()
	bakery := h.fx.Bakery(owner)
	p := h.bakeryProduct(t, bakery.ID, "10.00", dbtest.IntPtr(5))

	h.add(t, customer, p.ID, 2)
	h.add(t, customer, p.ID, 1)

	order, err := h.svc.CreateOrder(ctx, customer, pickupCash())
	require.NoError(t, err)

	assert.Equal(t, "30.00", money.Format(order.SubTotal))
	assert.Equal(t, "30.00", money.Format(order.TotalAmount))
	assert.Equal(t, "0.00", money.Format(order.DeliveryFee))
	assert.Equal(t, enums.OrderStatusPendingConfirmation, order.OrderStatus)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, enums.PaymentMethodCash, order.PaymentMethod)
	assert.True(t, order.IsPickup)
	require.NotNil(t, order.BakeryID)
	assert.Equal(t, bakery.ID, *order.BakeryID)
	assert.Nil(t, order.RestaurantID)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, "10.00", money.Format(order.Items[0].PriceAtPurchase))

	assert.Equal(t, 2, *h.fx.Stock(p.ID))

	view, err := h.carts.Get(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
	assert.Equal(t, "0.00", view.TotalString())

	assert.Equal(t, []sent{
		{userID: customer, kind: enums.NotificationTypeOrderCreated},
		{userID: owner, kind: enums.NotificationTypeOrderReceived},
	}, h.notifier.sent)
	assert.Equal(t, float64(1), counterValue(t, h.reg, "orders_created_total", "bakery"))
}

func TestCreateOrderPreconditionOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	customer := uuid.New()
	mine := h.fx.Address(customer)
	theirs := h.fx.Address(uuid.New())

	_, err := h.svc.CreateOrder(ctx, customer, Input{PaymentMethod: "cash"})
	requireField(t, err, pkgerrors.CodeValidation, "delivery_address_id")
	assert.Equal(t, "Delivery address is required unless it's a pickup order.", pkgerrors.As(err).Localized().EN)

	_, err = h.svc.CreateOrder(ctx, customer, Input{Pickup: true})
	requireField(t, err, pkgerrors.CodeValidation, "payment_method")
	assert.Equal(t, "طريقة الدفع مطلوبة.", pkgerrors.As(err).Localized().AR)

	_, err = h.svc.CreateOrder(ctx, customer, Input{Pickup: true, PaymentMethod: "barter"})
	requireField(t, err, pkgerrors.CodeValidation, "payment_method")

	_, err = h.svc.CreateOrder(ctx, customer, Input{DeliveryAddressID: &theirs.ID, PaymentMethod: "cash"})
	requireField(t, err, pkgerrors.CodeValidation, "delivery_address_id")
	assert.Equal(t, "Invalid delivery address.", pkgerrors.As(err).Localized().EN)

	_, err = h.svc.CreateOrder(ctx, customer, Input{DeliveryAddressID: &mine.ID, BillingAddressID: &theirs.ID, PaymentMethod: "cash"})
	requireField(t, err, pkgerrors.CodeValidation, "billing_address_id")

	_, err = h.svc.CreateOrder(ctx, customer, Input{DeliveryAddressID: &mine.ID, PaymentMethod: "cash"})
	requireField(t, err, pkgerrors.CodeEmptyCart, "")

	assert.Zero(t, h.orderCount(t))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	customer := uuid.New()

	_, err := h.svc.CreateOrder(ctx, customer, pickupCash())
	requireField(t, err, pkgerrors.CodeEmptyCart, "")

	_, err = h.carts.Get(ctx, customer)
	require.NoError(t, err)
	_, err = h.svc.CreateOrder(ctx, customer, pickupCash())
	requireField(t, err, pkgerrors.CodeEmptyCart, "")
	assert.Equal(t, float64(2), counterValue(t, h.reg, "checkout_rejections_total", string(pkgerrors.CodeEmptyCart)))
}

func TestCreateOrderRejectsMixedVendors(t *testing.T) {
	ctx := context.Background()

	t.Run("two bakeries", func(t *testing.T) {
		h := newHarness(t)
		customer := uuid.New()
		a := h.bakeryProduct(t, h.fx.Bakery(uuid.New()).ID, "1.00", dbtest.IntPtr(3))
		b := h.bakeryProduct(t, h.fx.Bakery(uuid.New()).ID, "1.00", nil)
		h.add(t, customer, a.ID, 1)
		h.add(t, customer, b.ID, 1)

		_, err := h.svc.CreateOrder(ctx, customer, pickupCash())
		requireField(t, err, pkgerrors.CodeMixedVendor, "")
		assert.Equal(t, "Cart contains items from multiple bakeries. Please create separate orders.", pkgerrors.As(err).Localized().EN)

		assert.Equal(t, 3, *h.fx.Stock(a.ID))
		view, err := h.carts.Get(ctx, customer)
		require.NoError(t, err)
		assert.Len(t, view.Cart.Items, 2, "rejected checkout keeps the cart")
		assert.Zero(t, h.orderCount(t))
	})

	t.Run("bakery and restaurant", func(t *testing.T) {
		h := newHarness(t)
		customer := uuid.New()
		a := h.bakeryProduct(t, h.fx.Bakery(uuid.New()).ID, "1.00", nil)
		restaurant := h.fx.Restaurant(uuid.New())
		r := h.fx.Product(func(p *models.Product) {
			p.RestaurantID = &restaurant.ID
			p.Price = decimal.RequireFromString("7.00")
		})
		h.add(t, customer, a.ID, 1)
		h.add(t, customer, r.ID, 1)

		_, err := h.svc.CreateOrder(ctx, customer, pickupCash())
		requireField(t, err, pkgerrors.CodeMixedVendor, "")
		assert.Equal(t, "تحتوي السلة على عناصر من مخابز ومطاعم. يرجى إنشاء طلبات منفصلة.", pkgerrors.As(err).Localized().AR)
	})
}

func TestCreateOrderRevalidatesProducts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	customer := uuid.New()
	bakery := h.fx.Bakery(uuid.New())
	p := h.bakeryProduct(t, bakery.ID, "2.00", dbtest.IntPtr(5))
	h.add(t, customer, p.ID, 3)

	require.NoError(t, h.conn.Model(&models.Product{}).Where("id = ?", p.ID).Update("stock_quantity", 2).Error)
	_, err := h.svc.CreateOrder(ctx, customer, pickupCash())
	requireField(t, err, pkgerrors.CodeValidation, "product_"+p.ID.String())
	assert.Equal(t, "Insufficient stock for product 'Croissant'.", pkgerrors.As(err).Localized().EN)

	require.NoError(t, h.conn.Model(&models.Product{}).Where("id = ?", p.ID).
		Updates(map[string]any{"stock_quantity": 10, "is_available": false}).Error)
	_, err = h.svc.CreateOrder(ctx, customer, pickupCash())
	requireField(t, err, pkgerrors.CodeValidation, "product_"+p.ID.String())
	assert.Equal(t, "المنتج 'كرواسون' لم يعد متوفرًا.", pkgerrors.As(err).Localized().AR)

	assert.Equal(t, 10, *h.fx.Stock(p.ID))
	assert.Zero(t, h.orderCount(t))
}

func TestCreateOrderAppliesFeesAndDefaultsBilling(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, withFees(FlatFees{
		Delivery: decimal.RequireFromString("5.00"),
		Service:  decimal.RequireFromString("1.50"),
	}))
	customer := uuid.New()
	addr := h.fx.Address(customer)
	p := h.bakeryProduct(t, h.fx.Bakery(uuid.New()).ID, "10.00", nil)
	h.add(t, customer, p.ID, 3)

	note := "  ring twice  "
	order, err := h.svc.CreateOrder(ctx, customer, Input{
		DeliveryAddressID:   &addr.ID,
		PaymentMethod:       "credit_card",
		SpecialInstructions: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, "30.00", money.Format(order.SubTotal))
	assert.Equal(t, "5.00", money.Format(order.DeliveryFee))
	assert.Equal(t, "1.50", money.Format(order.ServiceFee))
	assert.Equal(t, "36.50", money.Format(order.TotalAmount))
	require.NotNil(t, order.BillingAddressID)
	assert.Equal(t, addr.ID, *order.BillingAddressID)
	require.NotNil(t, order.SpecialInstructions)
	assert.Equal(t, "ring twice", *order.SpecialInstructions)
	assert.Nil(t, h.fx.Stock(p.ID), "untracked stock stays untracked")

	h.add(t, customer, p.ID, 1)
	order, err = h.svc.CreateOrder(ctx, customer, Input{Pickup: true, PaymentMethod: "wallet"})
	require.NoError(t, err)
	assert.Equal(t, "0.00", money.Format(order.DeliveryFee))
	assert.Equal(t, "11.50", money.Format(order.TotalAmount))
}

type flakyLedger struct {
	inner stockLedger
	fail  uuid.UUID
	err   error
}

func (f flakyLedger) WithTx(tx *gorm.DB) stock.Adjuster {
	return flakyAdjuster{Adjuster: f.inner.WithTx(tx), fail: f.fail, err: f.err}
}

type flakyAdjuster struct {
	stock.Adjuster
	fail uuid.UUID
	err  error
}

func (f flakyAdjuster) Decrement(ctx context.Context, productID uuid.UUID, qty int) error {
	if productID == f.fail {
		return f.err
	}
	return f.Adjuster.Decrement(ctx, productID, qty)
}

func TestCreateOrderRollsBackOnStockFailure(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		err  error
		code pkgerrors.Code
	}{
		{name: "guard miss", err: stock.ErrInsufficientStock, code: pkgerrors.CodeValidation},
		{name: "driver error", err: errors.New("disk I/O error"), code: pkgerrors.CodeInternal},
	} {
		t.Run(tc.name, func(t *testing.T) {
			secondID := uuid.New()
			h := newHarness(t, withFailingDecrement(secondID, tc.err))
			customer := uuid.New()
			bakery := h.fx.Bakery(uuid.New())
			first := h.bakeryProduct(t, bakery.ID, "1.00", dbtest.IntPtr(4))
			second := h.fx.Product(func(p *models.Product) {
				p.ID = secondID
				p.BakeryID = &bakery.ID
				p.Price = decimal.RequireFromString("2.00")
				p.StockQuantity = dbtest.IntPtr(4)
			})
			h.add(t, customer, first.ID, 2)
			h.add(t, customer, second.ID, 2)

			_, err := h.svc.CreateOrder(ctx, customer, pickupCash())
			requireField(t, err, tc.code, "")

			assert.Equal(t, 4, *h.fx.Stock(first.ID), "first decrement rolled back")
			assert.Zero(t, h.orderCount(t))
			var items int64
			require.NoError(t, h.conn.Model(&models.OrderItem{}).Count(&items).Error)
			assert.Zero(t, items)
			view, err := h.carts.Get(ctx, customer)
			require.NoError(t, err)
			assert.Len(t, view.Cart.Items, 2)
			assert.Empty(t, h.notifier.sent)
		})
	}
}

func TestCreateOrderSurvivesNotifierFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.notifier.err = errors.New("smtp down")
	customer := uuid.New()
	p := h.bakeryProduct(t, h.fx.Bakery(uuid.New()).ID, "3.00", nil)
	h.add(t, customer, p.ID, 1)

	order, err := h.svc.CreateOrder(ctx, customer, pickupCash())
	require.NoError(t, err)
	assert.Equal(t, "3.00", money.Format(order.TotalAmount))
	assert.Len(t, h.notifier.sent, 2)
}

type brokenDirectory struct {
	vendors.Directory
}

func (brokenDirectory) WithTx(*gorm.DB) vendors.Directory { return brokenDirectory{} }

func (brokenDirectory) BakeryOwner(context.Context, uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, errors.New("vendors replica unavailable")
}

func TestCreateOrderSurvivesVendorLookupFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, func(d *Deps, _ *gorm.DB) { d.Vendors = brokenDirectory{} })
	customer := uuid.New()
	p := h.bakeryProduct(t, h.fx.Bakery(uuid.New()).ID, "4.00", dbtest.IntPtr(3))
	h.add(t, customer, p.ID, 2)

	order, err := h.svc.CreateOrder(ctx, customer, pickupCash())
	require.NoError(t, err)
	assert.Equal(t, "8.00", money.Format(order.TotalAmount))
	assert.Equal(t, int64(1), h.orderCount(t))
	assert.Equal(t, 1, *h.fx.Stock(p.ID))
	assert.Equal(t, []sent{{userID: customer, kind: enums.NotificationTypeOrderCreated}}, h.notifier.sent)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
