package helpers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
)

// ProductField names the per-line error field, e.g. product_<uuid>.
func ProductField(productID uuid.UUID) string {
	return "product_" + productID.String()
}

// ValidateLines checks that every line's product still exists, is available
// and has enough finite stock. The first failing line wins.
func ValidateLines(items []models.CartItem, products map[uuid.UUID]models.Product) error {
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || !product.IsAvailable {
			nameEN, nameAR := displayNames(item, product, ok)
			return Unavailable(item.ProductID, nameEN, nameAR)
		}
		if !product.HasStockFor(item.Quantity) {
			return InsufficientStock(item.ProductID, product.NameEN, product.NameAR)
		}
	}
	return nil
}

func Unavailable(productID uuid.UUID, nameEN, nameAR string) error {
	return pkgerrors.Validation(ProductField(productID),
		fmt.Sprintf("Product '%s' is no longer available.", nameEN),
		fmt.Sprintf("المنتج '%s' لم يعد متوفرًا.", nameAR))
}

func InsufficientStock(productID uuid.UUID, nameEN, nameAR string) error {
	return pkgerrors.Validation(ProductField(productID),
		fmt.Sprintf("Insufficient stock for product '%s'.", nameEN),
		fmt.Sprintf("مخزون غير كافٍ للمنتج '%s'.", nameAR))
}

// displayNames falls back to the preloaded product, then the raw id, when the
// catalog no longer returns the product.
func displayNames(item models.CartItem, product models.Product, found bool) (string, string) {
	if found {
		return product.NameEN, product.NameAR
	}
	if item.Product != nil {
		return item.Product.NameEN, item.Product.NameAR
	}
	id := item.ProductID.String()
	return id, id
}
