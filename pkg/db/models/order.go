package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/pkg/enums"
)

// Order is immutable after creation apart from status, payment status and delivery times.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID                uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	BakeryID              *uuid.UUID          `gorm:"column:bakery_id;type:uuid;index"`
	RestaurantID          *uuid.UUID          `gorm:"column:restaurant_id;type:uuid;index"`
	DeliveryAddressID     *uuid.UUID          `gorm:"column:delivery_address_id;type:uuid"`
	BillingAddressID      *uuid.UUID          `gorm:"column:billing_address_id;type:uuid"`
	IsPickup              bool                `gorm:"column:is_pickup;not null"`
	SubTotal              decimal.Decimal     `gorm:"column:sub_total;type:numeric(10,2);not null"`
	DeliveryFee           decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(10,2);not null"`
	ServiceFee            decimal.Decimal     `gorm:"column:service_fee;type:numeric(10,2);not null"`
	DiscountAmount        decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2);not null"`
	TotalAmount           decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	PaymentMethod         enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;not null"`
	OrderStatus           enums.OrderStatus   `gorm:"column:order_status;not null;index"`
	SpecialInstructions   *string             `gorm:"column:special_instructions"`
	EstimatedDeliveryTime *time.Time          `gorm:"column:estimated_delivery_time"`
	ActualDeliveryTime    *time.Time          `gorm:"column:actual_delivery_time"`
	CancelledAt           *time.Time          `gorm:"column:cancelled_at"`
	Items                 []OrderItem         `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem is written once alongside its order and never changed.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(10,2);not null"`
	Product         *Product        `gorm:"foreignKey:ProductID;references:ID"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
