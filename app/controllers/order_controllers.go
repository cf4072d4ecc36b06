package controllers

import (
	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

const addressRequired = "Complete shipping address is required"

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

type placeOrderInput struct {
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
}

// Place checks out the caller's cart.
func (oc *OrderController) Place(c *ctx.Context) {
	var in placeOrderInput
	if !c.BindJSON(&in) {
		return
	}
	if in.ShippingAddress == nil {
		c.Invalid(addressRequired, map[string]string{"shippingAddress": addressRequired})
		return
	}

	order, err := oc.service.PlaceOrder(c.Context(), actor(c).ID, *in.ShippingAddress)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created("order", order)
}

func (oc *OrderController) Mine(c *ctx.Context) {
	orders, err := oc.service.MyOrders(c.Context(), actor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("orders", orders)
}

func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := pathID(c, "id", "Order not found")
	if !ok {
		return
	}

	order, err := oc.service.GetOrder(c.Context(), id, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("order", order)
}

// Cancel cancels a pending order of the caller and restocks its items.
func (oc *OrderController) Cancel(c *ctx.Context) {
	id, ok := pathID(c, "id", "Order not found")
	if !ok {
		return
	}

	order, err := oc.service.CancelOrder(c.Context(), id, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("order", order)
}
