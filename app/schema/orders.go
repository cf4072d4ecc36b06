// Package schema defines the read-only GraphQL view over orders.
//
//	{ myOrders { id status totalPrice items { name quantity } } }
//	{ order(id: 12) { status customer { name email } } }
//	{ sellerOrders { id items { productId price } } }
package schema

import (
	"errors"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/services"
	gql "github.com/shashiranjanraj/marketplace/pkg/graphql"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/middleware"
)

var (
	errNotAuthorized  = errors.New("Not authorized")
	errNotSeller      = errors.New("Access denied. Insufficient permissions")
	errSellerPending  = errors.New("Your seller account is pending approval")
	errInternalServer = errors.New("Internal Server Error")
)

// public returns err when its message is meant for the caller. Anything
// else is logged and replaced by a generic error.
func public(p graphql.ResolveParams, err error) error {
	var (
		notFound  *services.NotFoundError
		forbidden *services.ForbiddenError
		invalid   *services.ValidationError
	)
	if errors.As(err, &notFound) || errors.As(err, &forbidden) || errors.As(err, &invalid) {
		return err
	}
	logger.WithCtx(p.Context).Error("graphql: resolver failed", "field", p.Info.FieldName, "error", err)
	return errInternalServer
}

var addressType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ShippingAddress",
	Fields: graphql.Fields{
		"street":  &graphql.Field{Type: graphql.String},
		"city":    &graphql.Field{Type: graphql.String},
		"state":   &graphql.Field{Type: graphql.String},
		"zipCode": &graphql.Field{Type: graphql.String},
		"country": &graphql.Field{Type: graphql.String},
	},
})

var customerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Customer",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.Int},
		"name":  &graphql.Field{Type: graphql.String},
		"email": &graphql.Field{Type: graphql.String},
	},
})

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.Int},
		"sellerId":  &graphql.Field{Type: graphql.Int},
		"name":      &graphql.Field{Type: graphql.String},
		"image":     &graphql.Field{Type: graphql.String},
		"price":     &graphql.Field{Type: graphql.Float},
		"quantity":  &graphql.Field{Type: graphql.Int},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.Int},
		"status":          &graphql.Field{Type: graphql.String},
		"paymentMethod":   &graphql.Field{Type: graphql.String},
		"itemsPrice":      &graphql.Field{Type: graphql.Float},
		"shippingPrice":   &graphql.Field{Type: graphql.Float},
		"taxPrice":        &graphql.Field{Type: graphql.Float},
		"totalPrice":      &graphql.Field{Type: graphql.Float},
		"createdAt":       &graphql.Field{Type: graphql.String},
		"deliveredAt":     &graphql.Field{Type: graphql.String},
		"cancelledAt":     &graphql.Field{Type: graphql.String},
		"shippingAddress": &graphql.Field{Type: addressType},
		"customer":        &graphql.Field{Type: customerType},
		"items":           &graphql.Field{Type: graphql.NewList(itemType)},
	},
})

// OrderSchema builds the schema over orders. Resolvers read the caller
// from the request context, so the endpoint must sit behind Authenticate.
func OrderSchema(orders *services.OrderService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"myOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, ok := middleware.PrincipalFromCtx(p.Context)
					if !ok {
						return nil, errNotAuthorized
					}
					list, err := orders.MyOrders(p.Context, caller.ID)
					if err != nil {
						return nil, public(p, err)
					}
					return views(list), nil
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, ok := middleware.PrincipalFromCtx(p.Context)
					if !ok {
						return nil, errNotAuthorized
					}
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, &services.NotFoundError{Resource: "Order"}
					}
					order, err := orders.GetOrder(p.Context, uint(id), services.Actor{ID: caller.ID, Role: caller.Role})
					if err != nil {
						return nil, public(p, err)
					}
					return view(*order), nil
				},
			},
			"sellerOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, ok := middleware.PrincipalFromCtx(p.Context)
					if !ok {
						return nil, errNotAuthorized
					}
					if caller.Role != models.RoleSeller {
						return nil, errNotSeller
					}
					if !caller.Approved {
						return nil, errSellerPending
					}
					list, err := orders.SellerOrders(p.Context, caller.ID)
					if err != nil {
						return nil, public(p, err)
					}
					return views(list), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func views(orders []models.Order) []map[string]interface{} {
	out := make([]map[string]interface{}, len(orders))
	for i, o := range orders {
		out[i] = view(o)
	}
	return out
}

// view flattens an order into the maps graphql-go resolves by key.
func view(o models.Order) map[string]interface{} {
	items := make([]map[string]interface{}, len(o.Items))
	for i, it := range o.Items {
		items[i] = map[string]interface{}{
			"productId": int(it.ProductID),
			"sellerId":  int(it.SellerID),
			"name":      it.Name,
			"image":     it.Image,
			"price":     it.Price.InexactFloat64(),
			"quantity":  it.Quantity,
		}
	}

	m := map[string]interface{}{
		"id":            int(o.ID),
		"status":        string(o.Status),
		"paymentMethod": o.PaymentMethod,
		"itemsPrice":    o.ItemsPrice.InexactFloat64(),
		"shippingPrice": o.ShippingPrice.InexactFloat64(),
		"taxPrice":      o.TaxPrice.InexactFloat64(),
		"totalPrice":    o.TotalPrice.InexactFloat64(),
		"createdAt":     o.CreatedAt.UTC().Format(time.RFC3339),
		"deliveredAt":   timestamp(o.DeliveredAt),
		"cancelledAt":   timestamp(o.CancelledAt),
		"shippingAddress": map[string]interface{}{
			"street":  o.ShippingAddress.Street,
			"city":    o.ShippingAddress.City,
			"state":   o.ShippingAddress.State,
			"zipCode": o.ShippingAddress.ZipCode,
			"country": o.ShippingAddress.Country,
		},
		"items": items,
	}
	if o.Customer != nil {
		m["customer"] = map[string]interface{}{
			"id":    int(o.Customer.ID),
			"name":  o.Customer.Name,
			"email": o.Customer.Email,
		}
	}
	return m
}

func timestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
