package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue entry sold by exactly one bakery or restaurant.
// A nil StockQuantity means stock is not tracked.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BakeryID      *uuid.UUID      `gorm:"column:bakery_id;type:uuid;index"`
	RestaurantID  *uuid.UUID      `gorm:"column:restaurant_id;type:uuid;index"`
	NameEN        string          `gorm:"column:name_en;not null"`
	NameAR        string          `gorm:"column:name_ar;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity *int            `gorm:"column:stock_quantity"`
	IsAvailable   bool            `gorm:"column:is_available;not null"`
	ImageURL      *string         `gorm:"column:image_url"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// HasStockFor reports whether qty units can be taken from current stock.
func (p Product) HasStockFor(qty int) bool {
	return p.StockQuantity == nil || *p.StockQuantity >= qty
}
