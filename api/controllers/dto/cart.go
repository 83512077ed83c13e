package dto

import (
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/angelmondragon/ovenly-backend/internal/cart"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

type CartResponse struct {
	Cart Cart `json:"cart"`
}

type Cart struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Items      []CartItem `json:"items"`
	TotalPrice string     `json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Quantity        int       `json:"quantity"`
	PriceAtAddition string    `json:"price_at_addition"`
	LineTotal       string    `json:"line_total"`
	Product         *Product  `json:"product,omitempty"`
}

func NewCartResponse(view *cartsvc.View) CartResponse {
	cart := view.Cart
	items := make([]CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItem{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtAddition: money.Format(item.PriceAtAddition),
			LineTotal:       money.Format(item.LineTotal()),
			Product:         NewProduct(item.Product),
		})
	}
	return CartResponse{Cart: Cart{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalPrice: view.TotalString(),
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}}
}
