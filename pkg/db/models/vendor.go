package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bakery is owned by a bakery_owner user.
type Bakery struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	NameEN    string    `gorm:"column:name_en;not null"`
	NameAR    string    `gorm:"column:name_ar;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Bakery) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Restaurant is owned by a restaurant_owner user.
type Restaurant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	NameEN    string    `gorm:"column:name_en;not null"`
	NameAR    string    `gorm:"column:name_ar;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
