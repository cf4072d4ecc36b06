package controllers

import (
	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

// SellerController serves approved sellers; rbac.HasRole guards its routes.
type SellerController struct {
	orders *services.OrderService
}

func NewSellerController(orders *services.OrderService) *SellerController {
	return &SellerController{orders: orders}
}

type updateStatusInput struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// Orders lists the orders holding the seller's items, reduced to those items.
func (sc *SellerController) Orders(c *ctx.Context) {
	orders, err := sc.orders.SellerOrders(c.Context(), actor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("orders", orders)
}

func (sc *SellerController) UpdateStatus(c *ctx.Context) {
	id, ok := pathID(c, "id", "Order not found")
	if !ok {
		return
	}
	var in updateStatusInput
	if !c.BindJSON(&in) {
		return
	}

	order, err := sc.orders.AdvanceStatus(c.Context(), id, actor(c), in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("order", order)
}
