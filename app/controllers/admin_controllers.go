package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

type AdminController struct {
	admin  *services.AdminService
	orders *services.OrderService
}

func NewAdminController(admin *services.AdminService, orders *services.OrderService) *AdminController {
	return &AdminController{admin: admin, orders: orders}
}

type sellerSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	IsApproved bool   `json:"isApproved"`
}

func (ac *AdminController) Orders(c *ctx.Context) {
	orders, err := ac.orders.AllOrders(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("orders", orders)
}

func (ac *AdminController) Sellers(c *ctx.Context) {
	sellers, err := ac.admin.Sellers(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("sellers", sellers)
}

func (ac *AdminController) Approve(c *ctx.Context) {
	ac.setApproval(c, true)
}

func (ac *AdminController) Reject(c *ctx.Context) {
	ac.setApproval(c, false)
}

func (ac *AdminController) setApproval(c *ctx.Context, approve bool) {
	id, ok := pathID(c, "id", "Seller not found")
	if !ok {
		return
	}

	change, message := ac.admin.Reject, "Seller rejected"
	if approve {
		change, message = ac.admin.Approve, "Seller approved"
	}

	seller, err := change(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"seller":  summarize(seller),
	})
}

func summarize(u *models.User) sellerSummary {
	return sellerSummary{ID: u.ID, Name: u.Name, IsApproved: u.IsApproved}
}
