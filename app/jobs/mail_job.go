package jobs

import (
	"context"
	"fmt"
	"html/template"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/pkg/collection"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/mail"
	"gorm.io/gorm"
)

// Mail kinds.
const (
	MailPlaced        = "placed"
	MailStatusChanged = "status_changed"
	MailCancelled     = "cancelled"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "placed"}}<p>Hi {{.Customer.Name}},</p>
<p>Thanks for your order #{{.Order.ID}}. We will let you know when it ships.</p>
<table>{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}} × {{.Price.StringFixed 2}}</td></tr>{{end}}</table>
<p>Items {{.Order.ItemsPrice.StringFixed 2}}, shipping {{.Order.ShippingPrice.StringFixed 2}}, tax {{.Order.TaxPrice.StringFixed 2}}.</p>
<p><strong>Total {{.Order.TotalPrice.StringFixed 2}}</strong></p>{{end}}
{{define "seller"}}<p>Hi {{.Seller.Name}},</p>
<p>Order #{{.Order.ID}} includes items from {{if .Seller.StoreName}}{{.Seller.StoreName}}{{else}}your store{{end}}:</p>
<ul>{{range .Order.Items}}<li>{{.Quantity}} × {{.Name}}</li>{{end}}</ul>
<p>Ship to {{.Order.ShippingAddress.City}}, {{.Order.ShippingAddress.Country}}.</p>{{end}}
{{define "status_changed"}}<p>Hi {{.Customer.Name}},</p>
<p>Your order #{{.Order.ID}} is now <strong>{{.Order.Status}}</strong>.</p>{{end}}
{{define "cancelled"}}<p>Hi {{.Customer.Name}},</p>
<p>Your order #{{.Order.ID}} was cancelled. Nothing will be shipped.</p>{{end}}
`))

// SendOrderMailJob emails the customer about an order event. Sellers are
// told about placed orders by their own SendSellerMailJob, so a retry here
// never mails them twice and a failed seller mail never re-sends this one.
type SendOrderMailJob struct {
	OrderID uint   `json:"orderId"`
	Kind    string `json:"kind"`

	db     *gorm.DB
	mailer mail.Mailer
}

func (j *SendOrderMailJob) Handle(ctx context.Context) error {
	switch j.Kind {
	case MailPlaced, MailStatusChanged, MailCancelled:
	default:
		return fmt.Errorf("jobs: unknown mail kind %q", j.Kind)
	}

	order, err := repositories.NewOrderRepository(j.db).FindByID(ctx, j.OrderID)
	if err != nil {
		return err
	}
	if order.Customer == nil {
		return fmt.Errorf("jobs: order %d has no customer", order.ID)
	}

	err = mail.To(order.Customer.Email, order.Customer.Name).
		Subject(subject(j.Kind, order)).
		Template(templates.Lookup(j.Kind), map[string]interface{}{"Customer": order.Customer, "Order": order}).
		SendWith(ctx, mailerOr(j.mailer))
	if err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("order mail sent", "order_id", order.ID, "kind", j.Kind)
	return nil
}

// SendSellerMailJob tells one seller about a placed order, listing only the
// seller's own lines.
type SendSellerMailJob struct {
	OrderID  uint `json:"orderId"`
	SellerID uint `json:"sellerId"`

	db     *gorm.DB
	mailer mail.Mailer
}

func (j *SendSellerMailJob) Handle(ctx context.Context) error {
	order, err := repositories.NewOrderRepository(j.db).FindByID(ctx, j.OrderID)
	if err != nil {
		return err
	}
	seller, err := repositories.NewUserRepository(j.db).FindByID(ctx, j.SellerID)
	if err != nil {
		return err
	}

	own := *order
	own.Items = collection.Filter(order.Items, func(it models.OrderItem) bool { return it.SellerID == seller.ID })
	if len(own.Items) == 0 {
		return fmt.Errorf("jobs: seller %d has no items in order %d", seller.ID, order.ID)
	}

	err = mail.To(seller.Email, seller.Name).
		Subject(fmt.Sprintf("New order #%d", order.ID)).
		Template(templates.Lookup("seller"), map[string]interface{}{"Seller": seller, "Order": own}).
		SendWith(ctx, mailerOr(j.mailer))
	if err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("seller mail sent", "order_id", order.ID, "seller_id", seller.ID)
	return nil
}

func mailerOr(m mail.Mailer) mail.Mailer {
	if m == nil {
		return mail.Default()
	}
	return m
}

func subject(kind string, order *models.Order) string {
	switch kind {
	case MailPlaced:
		return fmt.Sprintf("Order #%d confirmed", order.ID)
	case MailCancelled:
		return fmt.Sprintf("Order #%d cancelled", order.ID)
	default:
		return fmt.Sprintf("Order #%d is %s", order.ID, order.Status)
	}
}
