// Package dto shapes domain records into the JSON payloads returned by the API.
package dto

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

// Product is the catalogue summary embedded in cart and order lines.
type Product struct {
	ID            uuid.UUID  `json:"id"`
	BakeryID      *uuid.UUID `json:"bakery_id,omitempty"`
	RestaurantID  *uuid.UUID `json:"restaurant_id,omitempty"`
	NameEN        string     `json:"name_en"`
	NameAR        string     `json:"name_ar"`
	Price         string     `json:"price"`
	ImageURL      *string    `json:"image_url"`
	StockQuantity *int       `json:"stock_quantity"`
	IsAvailable   bool       `json:"is_available"`
}

func NewProduct(p *models.Product) *Product {
	if p == nil {
		return nil
	}
	return &Product{
		ID:            p.ID,
		BakeryID:      p.BakeryID,
		RestaurantID:  p.RestaurantID,
		NameEN:        p.NameEN,
		NameAR:        p.NameAR,
		Price:         money.Format(p.Price),
		ImageURL:      p.ImageURL,
		StockQuantity: p.StockQuantity,
		IsAvailable:   p.IsAvailable,
	}
}
