package services

import "github.com/shashiranjanraj/marketplace/app/models"

// Events fired after an order write commits.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
)

// OrderEvent is the payload of every order event. Order is a snapshot taken
// right after the commit.
type OrderEvent struct {
	Order   models.Order
	From    models.OrderStatus
	To      models.OrderStatus
	ActorID uint
}
