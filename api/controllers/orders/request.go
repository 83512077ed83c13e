package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/internal/checkout"
)

// createOrderRequest takes either is_pickup or the older pickup_option flag.
type createOrderRequest struct {
	DeliveryAddressID   *uuid.UUID `json:"delivery_address_id"`
	BillingAddressID    *uuid.UUID `json:"billing_address_id"`
	IsPickup            bool       `json:"is_pickup"`
	PickupOption        bool       `json:"pickup_option"`
	PaymentMethod       string     `json:"payment_method" validate:"max=32"`
	SpecialInstructions *string    `json:"special_instructions" validate:"omitempty,max=1000"`
}

func (r createOrderRequest) toInput() checkout.Input {
	return checkout.Input{
		DeliveryAddressID:   r.DeliveryAddressID,
		BillingAddressID:    r.BillingAddressID,
		Pickup:              r.IsPickup || r.PickupOption,
		PaymentMethod:       r.PaymentMethod,
		SpecialInstructions: r.SpecialInstructions,
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}
