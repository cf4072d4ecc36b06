package services

import "github.com/shashiranjanraj/marketplace/app/models"

// Actor is the authenticated caller a service call is made on behalf of.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }
