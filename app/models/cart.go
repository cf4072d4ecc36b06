package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single mutable shopping cart of a customer.
type Cart struct {
	Base
	UserID     uint            `gorm:"not null;uniqueIndex" json:"userId"`
	Items      []CartItem      `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
}

// CartItem is one line of a cart. Price is the product price captured when
// the line was first added.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Position  int             `gorm:"not null;default:0" json:"-"`
}

// BeforeSave recomputes TotalPrice from the in-memory items so the stored
// total can never drift from the lines.
func (c *Cart) BeforeSave(_ *gorm.DB) error {
	c.TotalPrice = c.ComputeTotal()
	return nil
}

// ComputeTotal returns Σ price × quantity over the cart lines.
func (c *Cart) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Line returns the index of the line holding productID, or -1.
func (c *Cart) Line(productID uint) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return c == nil || len(c.Items) == 0 }
