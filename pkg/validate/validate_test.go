package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/marketplace/pkg/validate"
	"github.com/stretchr/testify/assert"
)

type address struct {
	Street  string `json:"street"  validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"nullable,in=customer|seller"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assert.False(t, validate.HasErrors(errs), errs)
}

func TestRequiredTreatsBlankAsEmpty(t *testing.T) {
	errs := validate.Struct(&registerInput{Name: "   ", Email: "", Password: ""})

	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestFirstFailingRuleWins(t *testing.T) {
	errs := validate.Struct(registerInput{Name: "A", Email: "nope", Password: "123"})

	assert.Equal(t, "The name must be at least 2 characters.", errs["name"])
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
	assert.Equal(t, "The password must be at least 6 characters.", errs["password"])
}

func TestInRuleWithNullable(t *testing.T) {
	base := registerInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"}

	base.Role = "admin"
	assert.Equal(t, "The selected role is invalid.", validate.Struct(base)["role"])

	base.Role = "seller"
	assert.Empty(t, validate.Struct(base))
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Quantity int `json:"quantity" validate:"required,gte=1,lte=99"`
	}
	assert.Contains(t, validate.Struct(in{Quantity: 0}), "quantity")
	assert.Contains(t, validate.Struct(in{Quantity: 100}), "quantity")
	assert.Empty(t, validate.Struct(in{Quantity: 3}))
}

func TestNestedStructUsesDottedPaths(t *testing.T) {
	type in struct {
		ShippingAddress address `json:"shippingAddress" validate:"required"`
	}

	errs := validate.Struct(in{ShippingAddress: address{Street: "1 Main St"}})
	assert.Equal(t, map[string]string{
		"shippingAddress.zipCode": "The zipCode field is required.",
	}, errs)
}

func TestMissingNestedStructReportsParentOnly(t *testing.T) {
	type in struct {
		ShippingAddress *address `json:"shippingAddress" validate:"required"`
	}

	errs := validate.Struct(in{})
	assert.Equal(t, map[string]string{
		"shippingAddress": "The shippingAddress field is required.",
	}, errs)
}

func TestURLRule(t *testing.T) {
	type in struct {
		Image string `json:"image" validate:"nullable,url"`
	}
	assert.Empty(t, validate.Struct(in{}))
	assert.Empty(t, validate.Struct(in{Image: "https://cdn.example.com/a.png"}))
	assert.Contains(t, validate.Struct(in{Image: "not-a-url"}), "image")
}
