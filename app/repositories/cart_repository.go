package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/marketplace/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository persists carts and their lines.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository {
	return &CartRepository{db: tx}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("cart_items.position ASC, cart_items.id ASC")
}

// FindByUser loads the user's cart with its lines in insertion order.
// withProducts also loads the product behind every line.
func (r *CartRepository) FindByUser(ctx context.Context, userID uint, withProducts bool) (*models.Cart, error) {
	q := r.db.WithContext(ctx).Preload("Items", orderedLines)
	if withProducts {
		q = q.Preload("Items.Product")
	}

	var cart models.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, fmt.Errorf("find cart of user %d: %w", userID, err)
	}
	return &cart, nil
}

// LockByUser loads the user's cart like FindByUser but takes a row lock on
// the cart, so two checkouts of the same cart serialize. Call it inside a
// transaction. SQLite has a single writer and SQL Server spells locking
// differently; both rely on Empty's row count instead.
func (r *CartRepository) LockByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	q := r.db.WithContext(ctx).Preload("Items", orderedLines)
	switch r.db.Dialector.Name() {
	case "sqlite", "sqlserver":
	default:
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, fmt.Errorf("lock cart of user %d: %w", userID, err)
	}
	return &cart, nil
}

// Empty deletes every line of cart and zeroes its total. It reports false,
// without saving, when the delete removed a different number of lines than
// cart holds: another transaction emptied or changed the cart first.
func (r *CartRepository) Empty(ctx context.Context, cart *models.Cart) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{})
	if res.Error != nil {
		return false, fmt.Errorf("empty cart %d: %w", cart.ID, res.Error)
	}
	if res.RowsAffected != int64(len(cart.Items)) {
		return false, nil
	}

	cart.Items = []models.CartItem{}
	if err := db.Omit(clause.Associations).Save(cart).Error; err != nil {
		return false, fmt.Errorf("save cart %d: %w", cart.ID, err)
	}
	return true, nil
}

// FindOrCreate returns the user's cart, creating an empty one on first use.
func (r *CartRepository) FindOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := r.FindByUser(ctx, userID, false)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(cart).Error
	if err != nil {
		return nil, fmt.Errorf("create cart for user %d: %w", userID, err)
	}
	// A concurrent request may have won the insert; reload either way.
	return r.FindByUser(ctx, userID, false)
}

// SetItems replaces the cart lines with items and saves the recomputed total.
// Passing no items empties the cart but keeps the cart row.
func (r *CartRepository) SetItems(ctx context.Context, cart *models.Cart, items []models.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart %d: %w", cart.ID, err)
		}

		lines := make([]models.CartItem, len(items))
		for i, it := range items {
			lines[i] = models.CartItem{
				CartID:    cart.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
				Position:  i,
			}
		}
		if len(lines) > 0 {
			if err := tx.Omit("Product").Create(&lines).Error; err != nil {
				return fmt.Errorf("write cart %d lines: %w", cart.ID, err)
			}
		}

		cart.Items = lines
		if err := tx.Omit(clause.Associations).Save(cart).Error; err != nil {
			return fmt.Errorf("save cart %d: %w", cart.ID, err)
		}
		return nil
	})
}
