package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/pagination"
)

// Repository defines persistence operations for the orders tables. Orders are
// never deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	MarkCancelled(ctx context.Context, orderID uuid.UUID, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, scope Scope, limit int, cursor *pagination.Cursor) ([]models.Order, *pagination.Cursor, error)
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}
