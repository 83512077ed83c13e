package helpers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

// Vendor identifies the single bakery or restaurant an order is placed with.
// At most one of the ids is set.
type Vendor struct {
	BakeryID     *uuid.UUID
	RestaurantID *uuid.UUID
}

// Kind labels the vendor for metrics.
func (v Vendor) Kind() string {
	switch {
	case v.BakeryID != nil:
		return "bakery"
	case v.RestaurantID != nil:
		return "restaurant"
	default:
		return "none"
	}
}

// ResolveVendor walks the lines in order and returns the one vendor they all
// belong to. Products attached to neither a bakery nor a restaurant do not
// constrain the result.
func ResolveVendor(items []models.CartItem, products map[uuid.UUID]models.Product) (Vendor, error) {
	var vendor Vendor
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		if product.BakeryID != nil {
			if vendor.BakeryID != nil && *vendor.BakeryID != *product.BakeryID {
				return Vendor{}, pkgerrors.MixedVendor(
					"Cart contains items from multiple bakeries. Please create separate orders.",
					"تحتوي السلة على عناصر من مخابز متعددة. يرجى إنشاء طلبات منفصلة.")
			}
			if vendor.RestaurantID != nil {
				return Vendor{}, mixedKinds()
			}
			id := *product.BakeryID
			vendor.BakeryID = &id
		}
		if product.RestaurantID != nil {
			if vendor.RestaurantID != nil && *vendor.RestaurantID != *product.RestaurantID {
				return Vendor{}, pkgerrors.MixedVendor(
					"Cart contains items from multiple restaurants. Please create separate orders.",
					"تحتوي السلة على عناصر من مطاعم متعددة. يرجى إنشاء طلبات منفصلة.")
			}
			if vendor.BakeryID != nil {
				return Vendor{}, mixedKinds()
			}
			id := *product.RestaurantID
			vendor.RestaurantID = &id
		}
	}
	return vendor, nil
}

func mixedKinds() error {
	return pkgerrors.MixedVendor(
		"Cart contains items from both bakeries and restaurants. Please create separate orders.",
		"تحتوي السلة على عناصر من مخابز ومطاعم. يرجى إنشاء طلبات منفصلة.")
}

// SubTotal sums the snapshot price of every line.
func SubTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(money.Line(item.PriceAtAddition, item.Quantity))
	}
	return money.Round(total)
}

// OrderItems converts cart lines into order lines carrying the snapshot price.
func OrderItems(orderID uuid.UUID, items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderItem{
			OrderID:         orderID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtAddition,
		})
	}
	return out
}
