package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
)

// Book answers ownership questions about saved addresses.
type Book interface {
	BelongsToUser(ctx context.Context, addressID, userID uuid.UUID) (bool, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) Book {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// BelongsToUser reports whether the address exists and is owned by userID.
func (r *Repository) BelongsToUser(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
