package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/internal/address"
	"github.com/angelmondragon/ovenly-backend/internal/cart"
	"github.com/angelmondragon/ovenly-backend/internal/catalog"
	"github.com/angelmondragon/ovenly-backend/internal/checkout/helpers"
	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/internal/orders"
	"github.com/angelmondragon/ovenly-backend/internal/stock"
	"github.com/angelmondragon/ovenly-backend/internal/vendors"
	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productReader interface {
	WithTx(tx *gorm.DB) catalog.Reader
}

type addressBook interface {
	WithTx(tx *gorm.DB) address.Book
}

type vendorDirectory interface {
	WithTx(tx *gorm.DB) vendors.Directory
}

type stockLedger interface {
	WithTx(tx *gorm.DB) stock.Adjuster
}

// Service turns the caller's cart into an order.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error)
}

// Input captures the checkout request. PaymentMethod is the raw value sent by
// the client.
type Input struct {
	DeliveryAddressID   *uuid.UUID
	BillingAddressID    *uuid.UUID
	Pickup              bool
	PaymentMethod       string
	SpecialInstructions *string
}

// Deps bundles the collaborators of the checkout service. Fees, Notifier and
// Metrics are optional.
type Deps struct {
	Tx        txRunner
	Carts     cart.CartRepository
	Orders    orders.Repository
	Products  productReader
	Addresses addressBook
	Vendors   vendorDirectory
	Stock     stockLedger
	Fees      FeePolicy
	Notifier  notifications.Notifier
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

type service struct {
	tx        txRunner
	carts     cart.CartRepository
	orders    orders.Repository
	products  productReader
	addresses addressBook
	vendors   vendorDirectory
	stock     stockLedger
	fees      FeePolicy
	notifier  notifications.Notifier
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if deps.Addresses == nil {
		return nil, fmt.Errorf("address book required")
	}
	if deps.Vendors == nil {
		return nil, fmt.Errorf("vendor directory required")
	}
	if deps.Stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	fees := deps.Fees
	if fees == nil {
		fees = FlatFees{}
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:        deps.Tx,
		carts:     deps.Carts,
		orders:    deps.Orders,
		products:  deps.Products,
		addresses: deps.Addresses,
		vendors:   deps.Vendors,
		stock:     deps.Stock,
		fees:      fees,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logg:      logg,
	}, nil
}

// CreateOrder validates the cart, writes the order and its lines, takes the
// stock and empties the cart in a single transaction. Any failure rolls the
// whole thing back.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error) {
	order, err := s.create(ctx, userID, input)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected(string(typed.Code()))
		}
		return nil, err
	}

	s.metrics.IncCreated(vendorKind(order))
	s.notify(ctx, order.UserID, notifications.OrderCreated(order))
	if owner, err := s.vendorOwner(ctx, order); err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "checkout.vendor_owner_lookup_failed", err)
	} else {
		s.notify(ctx, owner, notifications.OrderReceived(order))
	}

	fresh, err := s.orders.FindDetail(ctx, order.ID)
	if err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "checkout.reload_failed", err)
		return order, nil
	}
	return fresh, nil
}

func (s *service) create(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error) {
	if input.DeliveryAddressID == nil && !input.Pickup {
		return nil, pkgerrors.Validation("delivery_address_id",
			"Delivery address is required unless it's a pickup order.",
			"عنوان التسليم مطلوب ما لم يكن الطلب للاستلام.")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.Validation("payment_method", "Payment method is required.", "طريقة الدفع مطلوبة.")
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Validation("payment_method", "Invalid payment method.", "طريقة الدفع غير صالحة.")
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.checkAddresses(ctx, tx, userID, input); err != nil {
			return err
		}

		cartRepo := s.carts.WithTx(tx)
		record, err := cartRepo.LockByUser(ctx, userID)
		if err != nil && !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
		}
		if record == nil || len(record.Items) == 0 {
			return pkgerrors.EmptyCart()
		}

		products, err := s.products.WithTx(tx).FindByIDs(ctx, productIDs(record.Items))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}
		if err := helpers.ValidateLines(record.Items, products); err != nil {
			return err
		}
		vendor, err := helpers.ResolveVendor(record.Items, products)
		if err != nil {
			return err
		}

		subTotal := helpers.SubTotal(record.Items)
		fees, err := s.fees.Fees(ctx, Quote{SubTotal: subTotal, Vendor: vendor, Pickup: input.Pickup})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute fees")
		}

		billing := input.BillingAddressID
		if billing == nil {
			billing = input.DeliveryAddressID
		}
		order := &models.Order{
			UserID:              userID,
			BakeryID:            vendor.BakeryID,
			RestaurantID:        vendor.RestaurantID,
			DeliveryAddressID:   input.DeliveryAddressID,
			BillingAddressID:    billing,
			IsPickup:            input.Pickup,
			SubTotal:            subTotal,
			DeliveryFee:         money.Round(fees.Delivery),
			ServiceFee:          money.Round(fees.Service),
			DiscountAmount:      money.Round(fees.Discount),
			PaymentMethod:       method,
			PaymentStatus:       enums.PaymentStatusPending,
			OrderStatus:         enums.OrderStatusPendingConfirmation,
			SpecialInstructions: trimmed(input.SpecialInstructions),
		}
		order.TotalAmount = money.Total(order.SubTotal, order.DeliveryFee, order.ServiceFee, order.DiscountAmount)

		ordersRepo := s.orders.WithTx(tx)
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := ordersRepo.CreateItems(ctx, helpers.OrderItems(order.ID, record.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}

		ledger := s.stock.WithTx(tx)
		for _, item := range record.Items {
			if err := ledger.Decrement(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, stock.ErrInsufficientStock) {
					p := products[item.ProductID]
					return helpers.InsufficientStock(item.ProductID, p.NameEN, p.NameAR)
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
		}

		if err := cartRepo.ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) checkAddresses(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input Input) error {
	book := s.addresses.WithTx(tx)
	if input.DeliveryAddressID != nil {
		ok, err := book.BelongsToUser(ctx, *input.DeliveryAddressID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check delivery address")
		}
		if !ok {
			return pkgerrors.Validation("delivery_address_id", "Invalid delivery address.", "عنوان التسليم غير صالح.")
		}
	}
	if input.BillingAddressID != nil {
		ok, err := book.BelongsToUser(ctx, *input.BillingAddressID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check billing address")
		}
		if !ok {
			return pkgerrors.Validation("billing_address_id", "Invalid billing address.", "عنوان الفوترة غير صالح.")
		}
	}
	return nil
}

// vendorOwner runs after commit; the order stands whether or not the owner
// can be found.
func (s *service) vendorOwner(ctx context.Context, order *models.Order) (uuid.UUID, error) {
	directory := s.vendors.WithTx(nil)
	switch {
	case order.BakeryID != nil:
		return directory.BakeryOwner(ctx, *order.BakeryID)
	case order.RestaurantID != nil:
		return directory.RestaurantOwner(ctx, *order.RestaurantID)
	}
	return uuid.Nil, nil
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, event notifications.Event) {
	if s.notifier == nil || userID == uuid.Nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, event); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id":          event.OrderID.String(),
			"notification_type": string(event.Type),
			"recipient_id":      userID.String(),
		})
		s.logg.Error(ctx, "checkout.notify_failed", err)
	}
}

func productIDs(items []models.CartItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func vendorKind(order *models.Order) string {
	return helpers.Vendor{BakeryID: order.BakeryID, RestaurantID: order.RestaurantID}.Kind()
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
