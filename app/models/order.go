package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPaymentMethod is recorded when the client does not pick one.
// Payment is never collected by this service.
const DefaultPaymentMethod = "COD"

// ShippingAddress is stored inline on the order row.
type ShippingAddress struct {
	Street  string `gorm:"size:255;not null" json:"street"  validate:"required"`
	City    string `gorm:"size:120;not null" json:"city"    validate:"required"`
	State   string `gorm:"size:120;not null" json:"state"   validate:"required"`
	ZipCode string `gorm:"size:20;not null"  json:"zipCode" validate:"required"`
	Country string `gorm:"size:120;not null" json:"country" validate:"required"`
}

// Order is an immutable record of a purchase. After creation only Status,
// DeliveredAt and CancelledAt change.
type Order struct {
	Base
	CustomerID      uint            `gorm:"not null;index" json:"customerId"`
	Customer        *User           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string          `gorm:"size:50;not null" json:"paymentMethod"`
	ItemsPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"itemsPrice"`
	ShippingPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingPrice"`
	TaxPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"taxPrice"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	Status          OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
}

// OrderItem freezes the product data the customer agreed to at checkout.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"-"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	SellerID  uint            `gorm:"not null;index" json:"sellerId"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Image     string          `gorm:"size:500" json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.PaymentMethod == "" {
		o.PaymentMethod = DefaultPaymentMethod
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	return nil
}

// HasSeller reports whether any line of the order belongs to sellerID.
func (o *Order) HasSeller(sellerID uint) bool {
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}

// Subtotal returns price × quantity for the line.
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
