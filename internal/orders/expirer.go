package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
)

const expiryActorRole = "system"

// Expirer cancels orders that vendors never confirmed, restoring their stock.
type Expirer struct {
	svc *service
}

func NewExpirer(deps Deps) (*Expirer, error) {
	svc, err := NewService(deps)
	if err != nil {
		return nil, err
	}
	return &Expirer{svc: svc.(*service)}, nil
}

// ExpirePending cancels up to limit orders still pending confirmation that
// were placed before cutoff. Orders confirmed or cancelled in the meantime are
// skipped. It returns how many orders were cancelled.
func (e *Expirer) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	s := e.svc
	ids, err := s.repo.FindStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("find stale orders: %w", err)
	}

	expired := 0
	var errs error
	for _, id := range ids {
		ok, err := e.expireOne(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", id, err))
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errs
}

func (e *Expirer) expireOne(ctx context.Context, orderID uuid.UUID) (bool, error) {
	s := e.svc
	var (
		expired     *models.Order
		vendorOwner uuid.UUID
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := lockOrder(ctx, s.repo.WithTx(tx), orderID)
		if err != nil {
			return err
		}
		if order.OrderStatus != enums.OrderStatusPendingConfirmation {
			return nil
		}
		owner, err := vendorOwnerOf(ctx, s.vendors.WithTx(tx), order)
		if err != nil {
			return err
		}
		if err := s.compensate(ctx, tx, order); err != nil {
			return err
		}
		expired = order
		vendorOwner = owner
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeActionNotAllowed) {
			return false, nil
		}
		return false, err
	}
	if expired == nil {
		return false, nil
	}

	s.metrics.IncCancelled(expiryActorRole)
	event := notifications.OrderCancelled(expired)
	s.notify(ctx, expired.UserID, event)
	s.notify(ctx, vendorOwner, event)
	s.logg.Info(s.logg.WithOrderID(ctx, expired.ID.String()), "orders.expired")
	return true, nil
}
