package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ovenly-backend/internal/checkout/helpers"
	"github.com/angelmondragon/ovenly-backend/pkg/config"
)

// Quote is what a fee policy sees when pricing an order.
type Quote struct {
	SubTotal decimal.Decimal
	Vendor   helpers.Vendor
	Pickup   bool
}

// Fees are the amounts added to and subtracted from the sub-total.
type Fees struct {
	Delivery decimal.Decimal
	Service  decimal.Decimal
	Discount decimal.Decimal
}

// FeePolicy prices the non-item parts of an order.
type FeePolicy interface {
	Fees(ctx context.Context, quote Quote) (Fees, error)
}

// FlatFees charges the configured delivery and service fees. Pickup orders
// pay no delivery fee. No discount is applied.
type FlatFees struct {
	Delivery decimal.Decimal
	Service  decimal.Decimal
}

// NewFlatFees builds a policy from configuration; zero values disable a fee.
func NewFlatFees(cfg config.PricingConfig) (FlatFees, error) {
	fees, err := cfg.Fees()
	if err != nil {
		return FlatFees{}, err
	}
	return FlatFees{Delivery: fees.Delivery, Service: fees.Service}, nil
}

func (f FlatFees) Fees(_ context.Context, quote Quote) (Fees, error) {
	delivery := f.Delivery
	if quote.Pickup {
		delivery = decimal.Zero
	}
	return Fees{Delivery: delivery, Service: f.Service, Discount: decimal.Zero}, nil
}
