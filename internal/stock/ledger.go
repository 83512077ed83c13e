// Package stock owns every write to products.stock_quantity. Decrements are
// guarded updates so concurrent orders cannot drive finite stock below zero.
package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
)

// ErrInsufficientStock is returned when a guarded decrement matched no row.
var ErrInsufficientStock = errors.New("insufficient stock")

// Adjuster moves finite stock; untracked (NULL) stock is left untouched.
type Adjuster interface {
	Decrement(ctx context.Context, productID uuid.UUID, qty int) error
	Restore(ctx context.Context, productID uuid.UUID, qty int) error
}

type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// WithTx binds the ledger to the caller's transaction.
func (l *Ledger) WithTx(tx *gorm.DB) Adjuster {
	if tx == nil {
		return l
	}
	return &Ledger{db: tx, now: l.now}
}

// Decrement takes qty units. NULL stock stays NULL; a finite stock below qty,
// or a missing product, yields ErrInsufficientStock.
func (l *Ledger) Decrement(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	res := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND (stock_quantity IS NULL OR stock_quantity >= ?)", productID, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     l.now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("decrement stock for %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Restore credits qty units back. Products that no longer track stock, or no
// longer exist, are skipped.
func (l *Ledger) Restore(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("restore quantity must be positive, got %d", qty)
	}
	err := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity IS NOT NULL", productID).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"updated_at":     l.now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("restore stock for %s: %w", productID, err)
	}
	return nil
}
