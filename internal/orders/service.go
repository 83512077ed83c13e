package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/internal/stock"
	"github.com/angelmondragon/ovenly-backend/internal/vendors"
	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
	"github.com/angelmondragon/ovenly-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type vendorDirectory interface {
	WithTx(tx *gorm.DB) vendors.Directory
}

type stockLedger interface {
	WithTx(tx *gorm.DB) stock.Adjuster
}

// Service drives the order lifecycle after creation.
type Service interface {
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string) (*models.Order, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
	Detail(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
}

// Deps bundles the collaborators of the orders service. Notifier and Metrics
// are optional.
type Deps struct {
	Repo     Repository
	Tx       txRunner
	Vendors  vendorDirectory
	Stock    stockLedger
	Notifier notifications.Notifier
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	tx       txRunner
	vendors  vendorDirectory
	stock    stockLedger
	notifier notifications.Notifier
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order lifecycle service with the required dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Vendors == nil {
		return nil, fmt.Errorf("vendor directory required")
	}
	if deps.Stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     deps.Repo,
		tx:       deps.Tx,
		vendors:  deps.Vendors,
		stock:    deps.Stock,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// UpdateStatus lets an admin or the vendor owner move a live order to any
// status. Cancelled and delivered orders are final. Moving to cancelled goes
// through the same stock compensation as Cancel.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, raw string) (*models.Order, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Validation("status", "Invalid order status provided.", "حالة الطلب المقدمة غير صالحة.")
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := lockOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}

		ownsVendor, err := s.ownsVendor(ctx, s.vendors.WithTx(tx), actor, order)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !ownsVendor {
			return pkgerrors.Forbidden("You are not authorized to update this order's status.",
				"غير مصرح لك بتحديث حالة هذا الطلب.")
		}

		if order.OrderStatus.IsTerminal() {
			return notCancellable()
		}
		if status == enums.OrderStatusCancelled {
			if err := s.compensate(ctx, tx, order); err != nil {
				return err
			}
			updated = order
			return nil
		}

		now := s.now()
		updates := map[string]any{"order_status": status, "updated_at": now}
		if status == enums.OrderStatusDelivered && order.ActualDeliveryTime == nil {
			updates["actual_delivery_time"] = now
			order.ActualDeliveryTime = &now
		}
		if err := repo.UpdateStatus(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		order.OrderStatus = status
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(status))
	if status == enums.OrderStatusCancelled {
		s.metrics.IncCancelled(string(actor.Role))
		s.notify(ctx, updated.UserID, notifications.OrderCancelled(updated))
	} else {
		s.notify(ctx, updated.UserID, notifications.OrderStatusUpdated(updated))
	}
	return s.reload(ctx, updated)
}

// Cancel cancels an order and credits its quantities back to stock.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	var (
		cancelled   *models.Order
		vendorOwner uuid.UUID
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := lockOrder(ctx, s.repo.WithTx(tx), orderID)
		if err != nil {
			return err
		}

		directory := s.vendors.WithTx(tx)
		owner, err := vendorOwnerOf(ctx, directory, order)
		if err != nil {
			return err
		}
		ownsVendor := owner != uuid.Nil && owner == actor.UserID
		placedIt := order.UserID == actor.UserID

		if !actor.IsAdmin() && !ownsVendor && !placedIt {
			return pkgerrors.Forbidden("You are not authorized to cancel this order.", "غير مصرح لك بإلغاء هذا الطلب.")
		}
		if order.OrderStatus.IsTerminal() {
			return notCancellable()
		}
		if !actor.IsAdmin() && !ownsVendor && !order.OrderStatus.CustomerCancellable() {
			return pkgerrors.Forbidden("Order cannot be cancelled at its current stage.",
				"لا يمكن إلغاء الطلب في مرحلته الحالية.")
		}

		if err := s.compensate(ctx, tx, order); err != nil {
			return err
		}
		cancelled = order
		vendorOwner = owner
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancelled(string(actor.Role))
	event := notifications.OrderCancelled(cancelled)
	if actor.UserID != cancelled.UserID {
		s.notify(ctx, cancelled.UserID, event)
	}
	if vendorOwner != actor.UserID {
		s.notify(ctx, vendorOwner, event)
	}
	return s.reload(ctx, cancelled)
}

// compensate flips the locked order to cancelled and restores each line's
// quantity. The guarded status write makes a racing second cancel a no-op.
func (s *service) compensate(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	repo := s.repo.WithTx(tx)
	now := s.now()
	flipped, err := repo.MarkCancelled(ctx, order.ID, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
	}
	if !flipped {
		return notCancellable()
	}

	items, err := repo.FindItems(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order items")
	}
	ledger := s.stock.WithTx(tx)
	for _, item := range items {
		if err := ledger.Restore(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
		}
	}

	order.OrderStatus = enums.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	return nil
}

// List returns one page of the orders visible to actor.
func (s *service) List(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Validation("cursor", "Invalid pagination cursor.", "مؤشر الصفحات غير صالح.")
	}

	scope, err := s.scopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.List(ctx, scope, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return &OrderList{Orders: rows, NextCursor: pagination.EncodeNext(next)}, nil
}

func (s *service) scopeFor(ctx context.Context, actor Actor) (Scope, error) {
	directory := s.vendors.WithTx(nil)
	switch actor.Role {
	case enums.RoleAdmin:
		return Scope{All: true}, nil
	case enums.RoleBakeryOwner:
		ids, err := directory.OwnedBakeryIDs(ctx, actor.UserID)
		if err != nil {
			return Scope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owned bakeries")
		}
		return Scope{BakeryIDs: ids}, nil
	case enums.RoleRestaurantOwner:
		ids, err := directory.OwnedRestaurantIDs(ctx, actor.UserID)
		if err != nil {
			return Scope{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owned restaurants")
		}
		return Scope{RestaurantIDs: ids}, nil
	default:
		id := actor.UserID
		return Scope{UserID: &id}, nil
	}
}

// Detail returns the order with its items. Customers see only their own
// orders and owners only orders of vendors they own.
func (s *service) Detail(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindDetail(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, orderNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if actor.IsAdmin() || order.UserID == actor.UserID {
		return order, nil
	}

	owns, err := s.ownsVendor(ctx, s.vendors.WithTx(nil), actor, order)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, pkgerrors.Forbidden("You are not authorized to view this order.", "غير مصرح لك بعرض هذا الطلب.")
	}
	return order, nil
}

func (s *service) ownsVendor(ctx context.Context, directory vendors.Directory, actor Actor, order *models.Order) (bool, error) {
	owner, err := vendorOwnerOf(ctx, directory, order)
	if err != nil {
		return false, err
	}
	return owner != uuid.Nil && owner == actor.UserID, nil
}

// vendorOwnerOf resolves the owner of the order's bakery or restaurant, or
// uuid.Nil when the vendor no longer exists.
func vendorOwnerOf(ctx context.Context, directory vendors.Directory, order *models.Order) (uuid.UUID, error) {
	var (
		owner uuid.UUID
		err   error
	)
	switch {
	case order.BakeryID != nil:
		owner, err = directory.BakeryOwner(ctx, *order.BakeryID)
	case order.RestaurantID != nil:
		owner, err = directory.RestaurantOwner(ctx, *order.RestaurantID)
	}
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve vendor owner")
	}
	return owner, nil
}

func (s *service) reload(ctx context.Context, order *models.Order) (*models.Order, error) {
	fresh, err := s.repo.FindDetail(ctx, order.ID)
	if err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "orders.reload_failed", err)
		return order, nil
	}
	return fresh, nil
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
		s.logg.Error(ctx, "orders.notify_failed", err)
	}
}

func lockOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.LockByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, orderNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock order")
	}
	return order, nil
}

func orderNotFound() error {
	return pkgerrors.NotFound("Order not found.", "الطلب غير موجود.")
}

func notCancellable() error {
	return pkgerrors.ActionNotAllowed("Order is already cancelled or delivered.", "الطلب ملغى أو تم تسليمه بالفعل.")
}
