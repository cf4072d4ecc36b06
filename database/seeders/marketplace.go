package seeders

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

func init() {
	Register("users", SeedUsers)
	Register("categories", SeedCategories)
	Register("products", SeedProducts)
}

var demoUsers = []models.User{
	{Name: "Site Admin", Email: "admin@marketplace.test", Role: models.RoleAdmin, IsApproved: true},
	{Name: "Sam Seller", Email: "seller@marketplace.test", Role: models.RoleSeller, IsApproved: true,
		StoreName: "Sam's Lamps", StoreDescription: "Lighting and home decor"},
	{Name: "Cora Customer", Email: "customer@marketplace.test", Role: models.RoleCustomer},
}

func SeedUsers(db *gorm.DB) error {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for _, u := range demoUsers {
		u.Password = hash
		if err := db.Where(models.User{Email: u.Email}).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("create %s: %w", u.Email, err)
		}
	}
	return nil
}

func SeedCategories(db *gorm.DB) error {
	home := models.Category{Name: "Home", Description: "Furniture and decor"}
	if err := db.Where(models.Category{Name: home.Name}).FirstOrCreate(&home).Error; err != nil {
		return err
	}
	for _, name := range []string{"Lighting", "Rugs"} {
		c := models.Category{Name: name, ParentID: &home.ID}
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&c).Error; err != nil {
			return err
		}
	}
	return nil
}

func SeedProducts(db *gorm.DB) error {
	var seller models.User
	if err := db.Where("email = ?", "seller@marketplace.test").First(&seller).Error; err != nil {
		return fmt.Errorf("find demo seller: %w", err)
	}

	categoryID := func(name string) (*uint, error) {
		var c models.Category
		if err := db.Where("name = ?", name).First(&c).Error; err != nil {
			return nil, fmt.Errorf("find category %s: %w", name, err)
		}
		return &c.ID, nil
	}

	catalogue := []struct {
		name, category, price string
		stock                 int
	}{
		{"Brass Desk Lamp", "Lighting", "40.00", 25},
		{"Paper Floor Lamp", "Lighting", "85.50", 10},
		{"Wool Runner Rug", "Rugs", "70.00", 8},
	}
	for _, item := range catalogue {
		cid, err := categoryID(item.category)
		if err != nil {
			return err
		}
		p := models.Product{
			SellerID:   seller.ID,
			CategoryID: cid,
			Name:       item.name,
			Price:      decimal.RequireFromString(item.price),
			Stock:      item.stock,
			IsActive:   true,
		}
		if err := db.Where(models.Product{Name: item.name, SellerID: seller.ID}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("create %s: %w", item.name, err)
		}
	}
	return nil
}
