package services

import (
	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shopspring/decimal"
)

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.RequireFromString("0.05")
)

// Totals is the price breakdown stored on an order.
type Totals struct {
	Items    decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// PriceItems computes the order totals from frozen lines. Shipping is free
// strictly above 100; tax is 5% of the items price. Rounding is to cents,
// half away from zero.
func PriceItems(items []models.OrderItem) Totals {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}

	shipping := flatShipping
	if sum.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	tax := sum.Mul(taxRate).Round(2)

	return Totals{
		Items:    sum,
		Shipping: shipping,
		Tax:      tax,
		Total:    sum.Add(shipping).Add(tax).Round(2),
	}
}

func (t Totals) apply(o *models.Order) {
	o.ItemsPrice = t.Items
	o.ShippingPrice = t.Shipping
	o.TaxPrice = t.Tax
	o.TotalPrice = t.Total
}
