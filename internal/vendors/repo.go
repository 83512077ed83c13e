// Package vendors resolves bakery and restaurant ownership for order authorization.
package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
)

// Directory looks up vendor owners. Owner lookups return uuid.Nil when the
// vendor does not exist.
type Directory interface {
	BakeryOwner(ctx context.Context, bakeryID uuid.UUID) (uuid.UUID, error)
	RestaurantOwner(ctx context.Context, restaurantID uuid.UUID) (uuid.UUID, error)
	OwnedBakeryIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	OwnedRestaurantIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) Directory {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) BakeryOwner(ctx context.Context, bakeryID uuid.UUID) (uuid.UUID, error) {
	var row models.Bakery
	if err := r.db.WithContext(ctx).Select("owner_id").Where("id = ?", bakeryID).First(&row).Error; err != nil {
		return missingAsNil(err)
	}
	return row.OwnerID, nil
}

func (r *Repository) RestaurantOwner(ctx context.Context, restaurantID uuid.UUID) (uuid.UUID, error) {
	var row models.Restaurant
	if err := r.db.WithContext(ctx).Select("owner_id").Where("id = ?", restaurantID).First(&row).Error; err != nil {
		return missingAsNil(err)
	}
	return row.OwnerID, nil
}

func missingAsNil(err error) (uuid.UUID, error) {
	if db.IsNotFound(err) {
		return uuid.Nil, nil
	}
	return uuid.Nil, err
}

func (r *Repository) OwnedBakeryIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Bakery{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) OwnedRestaurantIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}
