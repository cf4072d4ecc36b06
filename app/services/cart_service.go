package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"gorm.io/gorm"
)

// CartService owns the per-customer cart. Prices are captured when a line
// is first added and never refreshed afterwards.
type CartService struct {
	db       *gorm.DB
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{
		db:       db,
		carts:    repositories.NewCartRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

func emptyCart(userID uint) *models.Cart {
	return &models.Cart{UserID: userID, Items: []models.CartItem{}}
}

// GetCart returns the customer's cart with products loaded, or an empty
// cart view when none exists yet.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// AddItem adds qty units of productID, merging into an existing line.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, invalid("quantity", "Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Product", Message: "Product not found or unavailable"}
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, &NotFoundError{Resource: "Product", Message: "Product not found or unavailable"}
	}
	if product.Stock < qty {
		return nil, &InsufficientStockError{Name: product.Name, Available: product.Stock}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		cart, err := carts.FindOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		items := append([]models.CartItem(nil), cart.Items...)
		if i := cart.Line(productID); i >= 0 {
			items[i].Quantity += qty
			if items[i].Quantity > product.Stock {
				return &InsufficientStockError{Name: product.Name, Available: product.Stock}
			}
		} else {
			items = append(items, models.CartItem{ProductID: productID, Quantity: qty, Price: product.Price})
		}
		return carts.SetItems(ctx, cart, items)
	})
	if err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Debug("cart: item added", "user_id", userID, "product_id", productID, "quantity", qty)
	return s.GetCart(ctx, userID)
}

// UpdateItem sets the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uint, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, invalid("quantity", "Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "Product")
	}
	if qty > product.Stock {
		return nil, &InsufficientStockError{Name: product.Name, Available: product.Stock}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		cart, err := carts.FindByUser(ctx, userID, false)
		if err != nil {
			return notFound(err, "Cart")
		}

		i := cart.Line(productID)
		if i < 0 {
			return &NotFoundError{Resource: "Item", Message: "Item not found in cart"}
		}
		items := append([]models.CartItem(nil), cart.Items...)
		items[i].Quantity = qty
		return carts.SetItems(ctx, cart, items)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem drops the line for productID. Removing a product that is not
// in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		cart, err := carts.FindByUser(ctx, userID, false)
		if err != nil {
			return notFound(err, "Cart")
		}

		items := make([]models.CartItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			if it.ProductID != productID {
				items = append(items, it)
			}
		}
		return carts.SetItems(ctx, cart, items)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the cart. The cart row itself is kept.
func (s *CartService) Clear(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return emptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.carts.SetItems(ctx, cart, nil); err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}
