package services

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	_ "github.com/shashiranjanraj/marketplace/database/migrations"
	"github.com/shashiranjanraj/marketplace/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

var completeAddress = models.ShippingAddress{
	Street: "1 Market St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, db: testkit.OpenDB(t)}
}

func (f *fixture) user(name, role string) models.User {
	f.t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role, IsApproved: role == models.RoleSeller}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) product(sellerID uint, name, price string, stock int) models.Product {
	f.t.Helper()
	p := models.Product{
		SellerID: sellerID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Images:   models.StringList{"https://cdn.example.com/" + name + ".png"},
		IsActive: true,
	}
	require.NoError(f.t, f.db.Create(&p).Error)
	return p
}

type line struct {
	product models.Product
	qty     int
}

// cart writes lines straight through the repository so tests can build
// carts the cart service would refuse (quantity above stock).
func (f *fixture) cart(userID uint, lines ...line) *models.Cart {
	f.t.Helper()
	repo := repositories.NewCartRepository(f.db)
	cart, err := repo.FindOrCreate(ctx, userID)
	require.NoError(f.t, err)

	items := make([]models.CartItem, len(lines))
	for i, l := range lines {
		items[i] = models.CartItem{ProductID: l.product.ID, Quantity: l.qty, Price: l.product.Price}
	}
	require.NoError(f.t, repo.SetItems(ctx, cart, items))
	return cart
}

func (f *fixture) stock(productID uint) int {
	f.t.Helper()
	var p models.Product
	require.NoError(f.t, f.db.First(&p, productID).Error)
	return p.Stock
}

func (f *fixture) cartLines(userID uint) int {
	f.t.Helper()
	cart, err := repositories.NewCartRepository(f.db).FindByUser(ctx, userID, false)
	require.NoError(f.t, err)
	return len(cart.Items)
}

func (f *fixture) setStatus(orderID uint, status models.OrderStatus) {
	f.t.Helper()
	require.NoError(f.t, f.db.Model(&models.Order{}).Where("id = ?", orderID).UpdateColumn("status", status).Error)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
