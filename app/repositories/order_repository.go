package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/marketplace/app/models"
	"gorm.io/gorm"
)

// OrderRepository persists orders. Orders are written only by the order
// service; everything else reads.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id ASC")
}

func customerSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role", "created_at", "updated_at")
}

const newestFirst = "orders.created_at DESC, orders.id DESC"

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit("Customer").Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// FindByID loads an order with its items and customer.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("Customer", customerSummary).
		First(&order, id).Error
	if err != nil {
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &order, nil
}

// ByCustomer lists a customer's orders, newest first.
func (r *OrderRepository) ByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("customer_id = ?", customerID).
		Order(newestFirst).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders of customer %d: %w", customerID, err)
	}
	return orders, nil
}

// BySeller lists every order holding at least one line sold by sellerID,
// newest first, with all lines and the customer loaded.
func (r *OrderRepository) BySeller(ctx context.Context, sellerID uint) ([]models.Order, error) {
	owned := r.db.Model(&models.OrderItem{}).Select("order_id").Where("seller_id = ?", sellerID)

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("Customer", customerSummary).
		Where("id IN (?)", owned).
		Order(newestFirst).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders of seller %d: %w", sellerID, err)
	}
	return orders, nil
}

// All lists every order, newest first, with the customer loaded.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("Customer", customerSummary).
		Order(newestFirst).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves the order from one status to another, stamping the
// extra columns in the same statement. It reports false when the order was
// no longer in status from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, from, to models.OrderStatus, extra map[string]interface{}) (bool, error) {
	cols := map[string]interface{}{"status": to}
	for k, v := range extra {
		cols[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(cols)
	if res.Error != nil {
		return false, fmt.Errorf("update status of order %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
