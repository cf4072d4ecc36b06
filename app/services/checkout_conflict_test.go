package services

import (
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
)

// afterOrderInsert runs sql inside the checkout transaction right after the
// order row is written, standing in for a concurrent writer.
func afterOrderInsert(t *testing.T, db *gorm.DB, sql string, args ...interface{}) {
	t.Helper()
	err := db.Callback().Create().After("gorm:create").Register("test:after_order_insert", func(tx *gorm.DB) {
		if tx.Statement.Table != "orders" || tx.Error != nil {
			return
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(sql, args...).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func stockConflicts(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.StockConflicts.Write(&m))
	return m.GetCounter().GetValue()
}

func (f *fixture) orderCount() int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestPlaceOrder_LateStockConflictRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	lamp := f.product(seller.ID, "lamp", "40.00", 5)
	rug := f.product(seller.ID, "rug", "70.00", 3)
	f.cart(customer.ID, line{lamp, 1}, line{rug, 2})

	// Stock passes validation, then drains before the rug's decrement.
	afterOrderInsert(t, f.db, "UPDATE products SET stock = 1 WHERE id = ?", rug.ID)
	conflicts := stockConflicts(t)

	_, err := NewOrderService(f.db).PlaceOrder(ctx, customer.ID, completeAddress)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "got %v", err)
	assert.Equal(t, "rug", stockErr.Name)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, conflicts+1, stockConflicts(t))

	assert.Zero(t, f.orderCount())
	assert.Equal(t, 5, f.stock(lamp.ID), "earlier decrement rolled back")
	assert.Equal(t, 3, f.stock(rug.ID))
	assert.Equal(t, 2, f.cartLines(customer.ID))
}

func TestPlaceOrder_CartEmptiedByConcurrentCheckout(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	lamp := f.product(seller.ID, "lamp", "40.00", 5)
	cart := f.cart(customer.ID, line{lamp, 2})

	// Another checkout of the same cart commits its cart reset first.
	afterOrderInsert(t, f.db, "DELETE FROM cart_items WHERE cart_id = ?", cart.ID)

	_, err := NewOrderService(f.db).PlaceOrder(ctx, customer.ID, completeAddress)

	var emptyErr *EmptyCartError
	require.True(t, errors.As(err, &emptyErr), "got %v", err)
	assert.Zero(t, f.orderCount())
	assert.Equal(t, 5, f.stock(lamp.ID))
	assert.Equal(t, 2, f.cartLines(customer.ID))
}

func TestCartEmptyReportsMissingLines(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	lamp := f.product(seller.ID, "lamp", "40.00", 5)
	f.cart(customer.ID, line{lamp, 2})

	repo := repositories.NewCartRepository(f.db)
	cart, err := repo.LockByUser(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	ok, err := repo.Empty(ctx, cart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, cart.TotalPrice.IsZero())

	// A stale copy still believes it holds the line.
	cart.Items = []models.CartItem{{ProductID: lamp.ID, Quantity: 2}}
	ok, err = repo.Empty(ctx, cart)
	require.NoError(t, err)
	assert.False(t, ok)
}
