package controllers

import (
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

type CartController struct {
	service *services.CartService
}

func NewCartController(service *services.CartService) *CartController {
	return &CartController{service: service}
}

type addToCartInput struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity"`
}

type updateCartInput struct {
	Quantity int `json:"quantity"`
}

func (cc *CartController) Show(c *ctx.Context) {
	cart, err := cc.service.GetCart(c.Context(), actor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("cart", cart)
}

// Add puts quantity (default 1) units of a product in the cart.
func (cc *CartController) Add(c *ctx.Context) {
	var in addToCartInput
	if !c.BindJSON(&in) {
		return
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}

	cart, err := cc.service.AddItem(c.Context(), actor(c).ID, in.ProductID, qty)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("cart", cart)
}

func (cc *CartController) Update(c *ctx.Context) {
	productID, ok := pathID(c, "productId", "Product not found")
	if !ok {
		return
	}
	var in updateCartInput
	if !c.BindJSON(&in) {
		return
	}

	cart, err := cc.service.UpdateItem(c.Context(), actor(c).ID, productID, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("cart", cart)
}

func (cc *CartController) Remove(c *ctx.Context) {
	productID, ok := pathID(c, "productId", "Product not found")
	if !ok {
		return
	}

	cart, err := cc.service.RemoveItem(c.Context(), actor(c).ID, productID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("cart", cart)
}

func (cc *CartController) Clear(c *ctx.Context) {
	cart, err := cc.service.Clear(c.Context(), actor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("cart", cart)
}
