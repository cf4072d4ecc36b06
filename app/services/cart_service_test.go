package services

import (
	"testing"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_GetWithoutCartIsEmptyView(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)

	cart, err := NewCartService(f.db).GetCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.TotalPrice.IsZero())
}

func TestCart_AddMergesLinesAndTotals(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	mug := f.product(seller.ID, "mug", "20.00", 5)
	bowl := f.product(seller.ID, "bowl", "7.50", 10)
	svc := NewCartService(f.db)

	_, err := svc.AddItem(ctx, customer.ID, mug.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, customer.ID, bowl.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, customer.ID, mug.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, mug.ID, cart.Items[0].ProductID, "insertion order is kept")
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.Items[1].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "mug", cart.Items[0].Product.Name)
	assert.True(t, cart.TotalPrice.Equal(dec("75.00")), "total %s", cart.TotalPrice)
}

func TestCart_AddKeepsCapturedPrice(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	mug := f.product(seller.ID, "mug", "20.00", 5)
	svc := NewCartService(f.db)

	_, err := svc.AddItem(ctx, customer.ID, mug.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&mug).UpdateColumn("price", dec("25.00")).Error)

	cart, err := svc.AddItem(ctx, customer.ID, mug.ID, 1)
	require.NoError(t, err)
	assert.True(t, cart.Items[0].Price.Equal(dec("20.00")))
	assert.True(t, cart.TotalPrice.Equal(dec("40.00")))
}

func TestCart_AddRejections(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	mug := f.product(seller.ID, "mug", "20.00", 3)
	hidden := f.product(seller.ID, "vase", "20.00", 3)
	require.NoError(t, f.db.Model(&hidden).UpdateColumn("is_active", false).Error)
	svc := NewCartService(f.db)

	_, err := svc.AddItem(ctx, customer.ID, 777, 1)
	assert.ErrorAs(t, err, new(*NotFoundError))

	_, err = svc.AddItem(ctx, customer.ID, hidden.ID, 1)
	assert.EqualError(t, err, "Product not found or unavailable")

	_, err = svc.AddItem(ctx, customer.ID, mug.ID, 0)
	assert.ErrorAs(t, err, new(*ValidationError))

	_, err = svc.AddItem(ctx, customer.ID, mug.ID, 4)
	assert.ErrorAs(t, err, new(*InsufficientStockError))

	_, err = svc.AddItem(ctx, customer.ID, mug.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, customer.ID, mug.ID, 2)
	assert.ErrorAs(t, err, new(*InsufficientStockError), "merged quantity may not exceed stock")

	cart, err := svc.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	mug := f.product(seller.ID, "mug", "20.00", 5)
	bowl := f.product(seller.ID, "bowl", "5.00", 5)
	svc := NewCartService(f.db)

	_, err := svc.UpdateItem(ctx, customer.ID, mug.ID, 1)
	assert.EqualError(t, err, "Cart not found")

	_, err = svc.AddItem(ctx, customer.ID, mug.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, customer.ID, bowl.ID, 1)
	assert.EqualError(t, err, "Item not found in cart")

	_, err = svc.UpdateItem(ctx, customer.ID, mug.ID, 6)
	assert.ErrorAs(t, err, new(*InsufficientStockError))

	cart, err := svc.UpdateItem(ctx, customer.ID, mug.ID, 4)
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.Equal(dec("80.00")))

	_, err = svc.AddItem(ctx, customer.ID, bowl.ID, 1)
	require.NoError(t, err)
	cart, err = svc.RemoveItem(ctx, customer.ID, mug.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, bowl.ID, cart.Items[0].ProductID)
	assert.True(t, cart.TotalPrice.Equal(dec("5.00")))

	cart, err = svc.Clear(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalPrice.IsZero())

	var carts int64
	require.NoError(t, f.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Equal(t, int64(1), carts, "clearing keeps the cart row")
}
