package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/marketplace/app/models"
	"gorm.io/gorm"
)

// ProductRepository is the catalogue store. Stock moves only through
// DecrementStock and IncrementStock.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// FindByID returns a product whether or not it is active.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}
	return &p, nil
}

// FindByIDs loads the given products keyed by id. Missing ids are absent
// from the map rather than reported as errors.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// DecrementStock subtracts qty only while enough stock remains. It returns
// false when a concurrent writer got there first and the guard rejected the
// update.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("decrement stock of product %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock adds qty back to a product's stock.
func (r *ProductRepository) IncrementStock(ctx context.Context, id uint, qty int) error {
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
	if err != nil {
		return fmt.Errorf("increment stock of product %d: %w", id, err)
	}
	return nil
}
