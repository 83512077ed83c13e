package dto

import (
	"time"

	"github.com/google/uuid"

	internalorders "github.com/angelmondragon/ovenly-backend/internal/orders"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

type OrderResponse struct {
	Order Order `json:"order"`
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

type Order struct {
	ID                    uuid.UUID           `json:"id"`
	UserID                uuid.UUID           `json:"user_id"`
	BakeryID              *uuid.UUID          `json:"bakery_id"`
	RestaurantID          *uuid.UUID          `json:"restaurant_id"`
	DeliveryAddressID     *uuid.UUID          `json:"delivery_address_id"`
	BillingAddressID      *uuid.UUID          `json:"billing_address_id"`
	IsPickup              bool                `json:"is_pickup"`
	SubTotal              string              `json:"sub_total"`
	DeliveryFee           string              `json:"delivery_fee"`
	ServiceFee            string              `json:"service_fee"`
	DiscountAmount        string              `json:"discount_amount"`
	TotalAmount           string              `json:"total_amount"`
	PaymentMethod         enums.PaymentMethod `json:"payment_method"`
	PaymentStatus         enums.PaymentStatus `json:"payment_status"`
	OrderStatus           enums.OrderStatus   `json:"order_status"`
	SpecialInstructions   *string             `json:"special_instructions"`
	EstimatedDeliveryTime *time.Time          `json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time          `json:"actual_delivery_time"`
	CancelledAt           *time.Time          `json:"cancelled_at"`
	Items                 []OrderItem         `json:"items"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

type OrderItem struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Quantity        int       `json:"quantity"`
	PriceAtPurchase string    `json:"price_at_purchase"`
	LineTotal       string    `json:"line_total"`
	Product         *Product  `json:"product,omitempty"`
}

func NewOrderResponse(order *models.Order) OrderResponse {
	return OrderResponse{Order: NewOrder(order)}
}

func NewOrderListResponse(list *internalorders.OrderList) OrderListResponse {
	out := OrderListResponse{Orders: make([]Order, 0, len(list.Orders)), NextCursor: list.NextCursor}
	for i := range list.Orders {
		out.Orders = append(out.Orders, NewOrder(&list.Orders[i]))
	}
	return out
}

func NewOrder(order *models.Order) Order {
	items := make([]OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItem{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: money.Format(item.PriceAtPurchase),
			LineTotal:       money.Format(money.Line(item.PriceAtPurchase, item.Quantity)),
			Product:         NewProduct(item.Product),
		})
	}
	return Order{
		ID:                    order.ID,
		UserID:                order.UserID,
		BakeryID:              order.BakeryID,
		RestaurantID:          order.RestaurantID,
		DeliveryAddressID:     order.DeliveryAddressID,
		BillingAddressID:      order.BillingAddressID,
		IsPickup:              order.IsPickup,
		SubTotal:              money.Format(order.SubTotal),
		DeliveryFee:           money.Format(order.DeliveryFee),
		ServiceFee:            money.Format(order.ServiceFee),
		DiscountAmount:        money.Format(order.DiscountAmount),
		TotalAmount:           money.Format(order.TotalAmount),
		PaymentMethod:         order.PaymentMethod,
		PaymentStatus:         order.PaymentStatus,
		OrderStatus:           order.OrderStatus,
		SpecialInstructions:   order.SpecialInstructions,
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		ActualDeliveryTime:    order.ActualDeliveryTime,
		CancelledAt:           order.CancelledAt,
		Items:                 items,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}
