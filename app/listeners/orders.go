// Package listeners reacts to order events: queueing mail and receipt jobs
// and pushing live updates to connected websocket clients.
package listeners

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/marketplace/app/jobs"
	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/collection"
	"github.com/shashiranjanraj/marketplace/pkg/event"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/queue"
)

// Publisher pushes a message to the connections of the given users.
// *ws.Hub satisfies it.
type Publisher interface {
	Publish(data []byte, userIDs ...uint)
}

// Orders handles the order events. A nil Publisher disables live updates.
type Orders struct {
	Publisher Publisher
	Dispatch  func(ctx context.Context, job queue.Job) error
}

// Message is the websocket frame sent for an order event.
type Message struct {
	Event string       `json:"event"`
	From  string       `json:"from,omitempty"`
	To    string       `json:"to"`
	Order models.Order `json:"order"`
}

// Register subscribes l to every order event.
func Register(l *Orders) {
	if l.Dispatch == nil {
		l.Dispatch = queue.Dispatch
	}
	event.Listen(services.EventOrderPlaced, l.handle(services.EventOrderPlaced, jobs.MailPlaced))
	event.Listen(services.EventOrderStatusChanged, l.handle(services.EventOrderStatusChanged, jobs.MailStatusChanged))
	event.Listen(services.EventOrderCancelled, l.handle(services.EventOrderCancelled, jobs.MailCancelled))
}

func (l *Orders) handle(name, mailKind string) event.Handler {
	return func(ctx context.Context, payload any) {
		ev, ok := payload.(services.OrderEvent)
		if !ok {
			logger.WithCtx(ctx).Error("listeners: unexpected payload", "event", name)
			return
		}
		l.queueJobs(ctx, name, mailKind, ev)
		l.publish(ctx, name, ev)
	}
}

func (l *Orders) queueJobs(ctx context.Context, name, mailKind string, ev services.OrderEvent) {
	queued := []queue.Job{&jobs.SendOrderMailJob{OrderID: ev.Order.ID, Kind: mailKind}}
	if name == services.EventOrderPlaced {
		for _, id := range sellerIDs(ev.Order) {
			queued = append(queued, &jobs.SendSellerMailJob{OrderID: ev.Order.ID, SellerID: id})
		}
		queued = append(queued, &jobs.ArchiveReceiptJob{OrderID: ev.Order.ID})
	}
	for _, job := range queued {
		if err := l.Dispatch(ctx, job); err != nil {
			logger.WithCtx(ctx).Error("listeners: dispatch job", "event", name, "order_id", ev.Order.ID, "error", err)
		}
	}
}

// publish sends the full order to the customer and each seller's
// projection to that seller.
func (l *Orders) publish(ctx context.Context, name string, ev services.OrderEvent) {
	if l.Publisher == nil {
		return
	}

	send := func(order models.Order, userID uint) {
		data, err := json.Marshal(Message{Event: name, From: string(ev.From), To: string(ev.To), Order: order})
		if err != nil {
			logger.WithCtx(ctx).Error("listeners: encode ws message", "order_id", order.ID, "error", err)
			return
		}
		l.Publisher.Publish(data, userID)
	}

	send(ev.Order, ev.Order.CustomerID)
	sellers := sellerIDs(ev.Order)
	for _, id := range sellers {
		send(services.ProjectForSeller(ev.Order, id), id)
	}
}

func sellerIDs(order models.Order) []uint {
	return collection.Unique(collection.Map(order.Items, func(it models.OrderItem) uint { return it.SellerID }))
}
