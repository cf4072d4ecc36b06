package models

import "github.com/shopspring/decimal"

// Product is a catalogue entry owned by a seller. Deactivated products stay
// in the table so existing orders keep their references.
type Product struct {
	Base
	SellerID    uint            `gorm:"not null;index" json:"sellerId"`
	Seller      *User           `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	CategoryID  *uint           `gorm:"index" json:"categoryId,omitempty"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Images      StringList      `gorm:"type:text" json:"images"`
	IsActive    bool            `gorm:"not null;index" json:"isActive"`
}
