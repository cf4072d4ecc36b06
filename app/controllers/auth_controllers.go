package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type loginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userView is the account summary returned next to a token.
type userView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsApproved bool   `json:"isApproved"`
	StoreName  string `json:"storeName,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func viewUser(u *models.User) userView {
	return userView{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
		IsApproved: u.IsApproved, StoreName: u.StoreName, Phone: u.Phone,
	}
}

// Register creates a customer or (unapproved) seller account.
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	user, token, err := ac.service.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "token": token, "user": viewUser(user)})
}

func (ac *AuthController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}

	user, token, err := ac.service.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{"success": true, "token": token, "user": viewUser(user)})
}

func (ac *AuthController) Profile(c *ctx.Context) {
	user, err := ac.service.Profile(c.Context(), actor(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success("user", user)
}
