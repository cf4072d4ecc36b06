package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shashiranjanraj/marketplace/app/models"
	"gorm.io/gorm"
)

// ValidationError carries per-field messages keyed by JSON path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// NotFoundError reports a missing resource ("Order", "Product", ...).
// Message, when set, replaces the default "<Resource> not found".
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Resource + " not found"
}

// ForbiddenError reports an authenticated caller acting outside their rights.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "Not authorized"
	}
	return e.Message
}

// UnauthorizedError is returned when credentials do not identify a user.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// InvalidTransitionError is returned when the lifecycle rejects a move.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot change status from %s to %s", e.From, e.To)
}

// EmptyCartError is returned when checking out a cart with no lines.
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string { return "Cart is empty" }

// ProductUnavailableError is returned for missing or deactivated products.
type ProductUnavailableError struct {
	Name string
}

func (e *ProductUnavailableError) Error() string {
	name := e.Name
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("Product %q is no longer available", name)
}

// InsufficientStockError reports how many units are actually left.
type InsufficientStockError struct {
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %q. Available: %d", e.Name, e.Available)
}

// notFound translates gorm.ErrRecordNotFound into a NotFoundError and passes
// every other error through.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
