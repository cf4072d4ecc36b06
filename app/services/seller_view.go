package services

import (
	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/pkg/collection"
)

// ProjectForSeller returns a copy of order whose Items hold only sellerID's
// lines. Status, totals, address and customer pass through unchanged; the
// totals still describe the whole order.
func ProjectForSeller(order models.Order, sellerID uint) models.Order {
	order.Items = collection.Filter(order.Items, func(it models.OrderItem) bool {
		return it.SellerID == sellerID
	})
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	return order
}
