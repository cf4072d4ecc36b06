package services

import (
	"testing"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/stretchr/testify/assert"
)

func TestProjectForSeller(t *testing.T) {
	order := models.Order{
		Base:   models.Base{ID: 7},
		Status: models.StatusShipped,
		Items: []models.OrderItem{
			{ID: 1, SellerID: 10, Name: "lamp"},
			{ID: 2, SellerID: 20, Name: "rug"},
			{ID: 3, SellerID: 10, Name: "shade"},
		},
		TotalPrice: dec("115.50"),
	}

	got := ProjectForSeller(order, 10)

	assert.Equal(t, []string{"lamp", "shade"}, []string{got.Items[0].Name, got.Items[1].Name})
	assert.Len(t, got.Items, 2)
	assert.Equal(t, models.StatusShipped, got.Status)
	assert.True(t, got.TotalPrice.Equal(dec("115.50")))
	assert.Len(t, order.Items, 3, "input order is not mutated")

	none := ProjectForSeller(order, 99)
	assert.NotNil(t, none.Items)
	assert.Empty(t, none.Items)
}
