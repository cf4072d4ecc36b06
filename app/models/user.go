package models

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// User is any account on the marketplace. Sellers must be approved by an
// admin before the seller endpoints open up to them.
type User struct {
	Base
	Name             string `gorm:"size:255;not null" json:"name"`
	Email            string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password         string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role             string `gorm:"size:20;not null;default:customer;index" json:"role"`
	IsApproved       bool   `gorm:"not null;default:false" json:"isApproved"`
	StoreName        string `gorm:"size:255" json:"storeName,omitempty"`
	StoreDescription string `gorm:"type:text" json:"storeDescription,omitempty"`
	Phone            string `gorm:"size:50" json:"phone,omitempty"`
}

// IsSeller reports whether the user registered as a seller, approved or not.
func (u User) IsSeller() bool { return u.Role == RoleSeller }

// CanSell reports whether the user may use the seller endpoints.
func (u User) CanSell() bool { return u.Role == RoleSeller && u.IsApproved }

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}
