package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/ovenly-backend/internal/catalog"
	"github.com/angelmondragon/ovenly-backend/pkg/db"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/money"
)

const (
	// MaxItemQuantity caps a single cart line.
	MaxItemQuantity = 999

	cartItemProductIndex = "idx_cart_items_cart_product"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productReader interface {
	WithTx(tx *gorm.DB) catalog.Reader
}

// Service exposes cart operations for a single authenticated user.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
}

// AddItemInput is the payload for AddItem. A nil ProductID is a validation failure.
type AddItemInput struct {
	ProductID *uuid.UUID
	Quantity  int
}

// View is a cart together with its computed total.
type View struct {
	Cart  *models.Cart
	Total decimal.Decimal
}

// TotalString renders the total with two decimals.
func (v *View) TotalString() string {
	return money.Format(v.Total)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productReader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// Get returns the user's cart, creating an empty one on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if err := s.repo.EnsureForUser(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure cart")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return newView(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if input.ProductID == nil || *input.ProductID == uuid.Nil || input.Quantity < 1 {
		return nil, pkgerrors.Validation("product_id, quantity",
			"Product ID and valid quantity are required.",
			"معرف المنتج والكمية الصالحة مطلوبان.")
	}
	if input.Quantity > MaxItemQuantity {
		return nil, quantityTooLarge()
	}
	productID := *input.ProductID

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := loadPurchasable(ctx, s.products.WithTx(tx), productID)
		if err != nil {
			return err
		}
		if !product.HasStockFor(input.Quantity) {
			return insufficientStock("Insufficient stock for the requested quantity.", "المخزون غير كافٍ للكمية المطلوبة.")
		}

		repo := s.repo.WithTx(tx)
		cart, err := lockCart(ctx, repo, userID)
		if err != nil {
			return err
		}

		existing, err := repo.FindItemByProduct(ctx, cart.ID, productID)
		switch {
		case err == nil:
			if existing.Quantity > MaxItemQuantity-input.Quantity {
				return quantityTooLarge()
			}
			existing.Quantity += input.Quantity
			if !product.HasStockFor(existing.Quantity) {
				return insufficientStock("Insufficient stock for the total requested quantity.", "المخزون غير كافٍ لإجمالي الكمية المطلوبة.")
			}
			existing.PriceAtAddition = product.Price
			if err := repo.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
			}
		case db.IsNotFound(err):
			item := &models.CartItem{
				CartID:          cart.ID,
				ProductID:       productID,
				Quantity:        input.Quantity,
				PriceAtAddition: product.Price,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				if db.IsUniqueViolation(err, cartItemProductIndex) {
					return pkgerrors.Conflict("Cart was updated by another request. Please try again.",
						"تم تحديث السلة بواسطة طلب آخر. يرجى المحاولة مرة أخرى.")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}

		view, err = reload(ctx, repo, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateItem sets the line to an absolute quantity.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, pkgerrors.Validation("quantity", "Valid quantity is required.", "الكمية الصالحة مطلوبة.")
	}
	if quantity > MaxItemQuantity {
		return nil, quantityTooLarge()
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := lockExistingCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return cartItemNotFound()
		}

		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if db.IsNotFound(err) {
				return cartItemNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}

		product, err := loadPurchasable(ctx, s.products.WithTx(tx), item.ProductID)
		if err != nil {
			return err
		}
		if !product.HasStockFor(quantity) {
			return insufficientStock("Insufficient stock for the requested quantity.", "المخزون غير كافٍ للكمية المطلوبة.")
		}

		item.Quantity = quantity
		item.PriceAtAddition = product.Price
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
		}

		view, err = reload(ctx, repo, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := lockExistingCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return cartItemNotFound()
		}

		removed, err := repo.DeleteItem(ctx, cart.ID, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
		}
		if removed == 0 {
			return cartItemNotFound()
		}

		view, err = reload(ctx, repo, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Clear empties the cart. A user without a cart gets an empty result and no
// cart is created.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := lockExistingCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			view = newView(&models.Cart{UserID: userID})
			return nil
		}
		if err := repo.ClearItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		cart.Items = nil
		view = newView(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Total sums quantity × snapshot price over every line, rounded to cents.
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return money.Round(total)
}

func newView(cart *models.Cart) *View {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &View{Cart: cart, Total: Total(cart.Items)}
}

func reload(ctx context.Context, repo CartRepository, userID uuid.UUID) (*View, error) {
	cart, err := repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return newView(cart), nil
}

// lockCart creates the cart if needed and locks its row.
func lockCart(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	if err := repo.EnsureForUser(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure cart")
	}
	cart, err := repo.LockByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
	}
	return cart, nil
}

// lockExistingCart returns nil without error when the user has no cart.
func lockExistingCart(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.LockByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
	}
	return cart, nil
}

func loadPurchasable(ctx context.Context, products catalog.Reader, productID uuid.UUID) (*models.Product, error) {
	product, err := products.FindByID(ctx, productID)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil || !product.IsAvailable {
		return nil, pkgerrors.NotFound("Product not found or not available.", "المنتج غير موجود أو غير متوفر.")
	}
	return product, nil
}

func insufficientStock(en, ar string) error {
	return pkgerrors.Validation("quantity", en, ar)
}

func quantityTooLarge() error {
	return pkgerrors.Validation("quantity",
		fmt.Sprintf("Quantity cannot exceed %d per item.", MaxItemQuantity),
		fmt.Sprintf("لا يمكن أن تتجاوز الكمية %d لكل منتج.", MaxItemQuantity))
}

func cartItemNotFound() error {
	return pkgerrors.NotFound("Cart item not found.", "عنصر سلة التسوق غير موجود.")
}
