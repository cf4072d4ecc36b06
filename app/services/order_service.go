package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/pkg/cache"
	"github.com/shashiranjanraj/marketplace/pkg/collection"
	"github.com/shashiranjanraj/marketplace/pkg/event"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
	"github.com/shashiranjanraj/marketplace/pkg/validate"
	"gorm.io/gorm"
)

// OrderService is the only writer of orders and of product stock.
type OrderService struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	carts    *repositories.CartRepository

	cache    orderCache
	cacheTTL time.Duration
	now      func() time.Time
}

// orderCache is the slice of pkg/cache the order reads use.
type orderCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Version(ctx context.Context, key string) int64
	SetVersioned(ctx context.Context, key string, version int64, value interface{}, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

type redisCache struct{}

func (redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	return cache.Get(ctx, key, dest)
}

func (redisCache) Version(ctx context.Context, key string) int64 { return cache.Version(ctx, key) }

func (redisCache) SetVersioned(ctx context.Context, key string, version int64, value interface{}, ttl time.Duration) (bool, error) {
	return cache.SetVersioned(ctx, key, version, value, ttl)
}

func (redisCache) Invalidate(ctx context.Context, key string) error { return cache.Invalidate(ctx, key) }

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		db:       db,
		orders:   repositories.NewOrderRepository(db),
		products: repositories.NewProductRepository(db),
		carts:    repositories.NewCartRepository(db),
		cache:    redisCache{},
		cacheTTL: time.Duration(config.OrderCacheTTLSeconds()) * time.Second,
		now:      time.Now,
	}
}

func orderCacheKey(id uint) string { return fmt.Sprintf("orders:%d", id) }

func normalizeAddress(a models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

func validateAddress(a models.ShippingAddress) error {
	errs := validate.Struct(a)
	if !validate.HasErrors(errs) {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for k, v := range errs {
		fields["shippingAddress."+k] = v
	}
	return &ValidationError{Fields: fields}
}

// freezeLines copies the catalogue data each cart line agreed to, in cart
// order, failing on the first unavailable or understocked product.
func freezeLines(lines []models.CartItem, catalog map[uint]models.Product) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, ok := catalog[line.ProductID]
		if !ok {
			return nil, &ProductUnavailableError{}
		}
		if !p.IsActive {
			return nil, &ProductUnavailableError{Name: p.Name}
		}
		if p.Stock < line.Quantity {
			return nil, &InsufficientStockError{Name: p.Name, Available: p.Stock}
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			SellerID:  p.SellerID,
			Name:      p.Name,
			Image:     p.Images.First(),
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}

// PlaceOrder turns the customer's cart into a Pending order. Cart read,
// order insert, stock decrement and cart reset share one transaction, so
// any failure leaves cart and stock as they were.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uint, address models.ShippingAddress) (*models.Order, error) {
	address = normalizeAddress(address)
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	var placed *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		products := s.products.WithTx(tx)

		cart, err := carts.LockByUser(ctx, customerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &EmptyCartError{}
		}
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return &EmptyCartError{}
		}

		ids := collection.Map(cart.Items, func(it models.CartItem) uint { return it.ProductID })
		catalog, err := products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		items, err := freezeLines(cart.Items, catalog)
		if err != nil {
			return err
		}

		order := &models.Order{
			CustomerID:      customerID,
			Items:           items,
			ShippingAddress: address,
			PaymentMethod:   models.DefaultPaymentMethod,
			Status:          models.StatusPending,
		}
		PriceItems(items).apply(order)

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		for _, it := range order.Items {
			ok, err := products.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				metrics.StockConflicts.Inc()
				available := 0
				if p, err := products.FindByID(ctx, it.ProductID); err == nil {
					available = p.Stock
				}
				return &InsufficientStockError{Name: it.Name, Available: available}
			}
		}

		emptied, err := carts.Empty(ctx, cart)
		if err != nil {
			return err
		}
		if !emptied {
			// A concurrent checkout already turned this cart into an order.
			return &EmptyCartError{}
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrdersValue.Add(placed.TotalPrice.InexactFloat64())
	logger.WithCtx(ctx).Info("order placed",
		"order_id", placed.ID, "customer_id", customerID, "total", placed.TotalPrice.StringFixed(2))

	event.FireAsync(ctx, EventOrderPlaced, OrderEvent{
		Order: *placed, To: models.StatusPending, ActorID: customerID,
	})
	return placed, nil
}

// CancelOrder cancels a Pending order on behalf of its customer and puts
// every item's quantity back on the shelf.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint, customer Actor) (*models.Order, error) {
	var cancelled *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		products := s.products.WithTx(tx)

		order, err := orders.FindByID(ctx, orderID)
		if err != nil {
			return notFound(err, "Order")
		}
		if order.CustomerID != customer.ID {
			return &ForbiddenError{Message: "Not authorized to cancel this order"}
		}
		if !order.Status.CanTransitionTo(models.StatusCancelled) {
			return &InvalidTransitionError{From: order.Status, To: models.StatusCancelled}
		}

		now := s.now()
		ok, err := orders.UpdateStatus(ctx, orderID, models.StatusPending, models.StatusCancelled,
			map[string]interface{}{"cancelled_at": now})
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race with another writer; report what it moved the order to.
			current, err := orders.FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			return &InvalidTransitionError{From: current.Status, To: models.StatusCancelled}
		}

		for _, it := range order.Items {
			if err := products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		order.Status = models.StatusCancelled
		order.CancelledAt = &now
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, cancelled, models.StatusPending, customer.ID, EventOrderCancelled)
	return cancelled, nil
}

// AdvanceStatus moves an order forward on behalf of a seller owning at
// least one of its items. Sellers can never cancel.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uint, seller Actor, target models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Order")
	}
	if !order.HasSeller(seller.ID) {
		return nil, &ForbiddenError{Message: "You do not have items in this order"}
	}

	from := order.Status
	if target == models.StatusCancelled || !from.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: from, To: target}
	}

	extra := map[string]interface{}{}
	now := s.now()
	if target == models.StatusDelivered {
		extra["delivered_at"] = now
	}

	ok, err := s.orders.UpdateStatus(ctx, orderID, from, target, extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: current.Status, To: target}
	}

	order.Status = target
	if target == models.StatusDelivered {
		order.DeliveredAt = &now
	}

	s.afterTransition(ctx, order, from, seller.ID, EventOrderStatusChanged)
	return order, nil
}

func (s *OrderService) afterTransition(ctx context.Context, order *models.Order, from models.OrderStatus, actorID uint, name string) {
	if err := s.cache.Invalidate(ctx, orderCacheKey(order.ID)); err != nil {
		logger.WithCtx(ctx).Warn("order cache invalidation failed", "order_id", order.ID, "error", err)
	}
	metrics.RecordTransition(string(from), string(order.Status))
	logger.WithCtx(ctx).Info("order status changed",
		"order_id", order.ID, "from", from, "to", order.Status, "actor_id", actorID)

	event.FireAsync(ctx, name, OrderEvent{Order: *order, From: from, To: order.Status, ActorID: actorID})
}

// GetOrder returns an order to its customer, to any seller owning one of
// its items, or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.loadCached(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != actor.ID && !order.HasSeller(actor.ID) && !actor.IsAdmin() {
		return nil, &ForbiddenError{Message: "Not authorized to view this order"}
	}
	return order, nil
}

func (s *OrderService) loadCached(ctx context.Context, orderID uint) (*models.Order, error) {
	key := orderCacheKey(orderID)

	var cached models.Order
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	// The version is read before the row so a status write landing in
	// between makes the store below a no-op.
	version := s.cache.Version(ctx, key)
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "Order")
	}
	if _, err := s.cache.SetVersioned(ctx, key, version, order, s.cacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("order cache write failed", "order_id", orderID, "error", err)
	}
	return order, nil
}

// MyOrders lists the customer's orders, newest first.
func (s *OrderService) MyOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders, err := s.orders.ByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return nonNil(orders), nil
}

// AllOrders lists every order for the admin view, newest first.
func (s *OrderService) AllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(orders), nil
}

// SellerOrders lists the orders containing the seller's items, each reduced
// to those items.
func (s *OrderService) SellerOrders(ctx context.Context, sellerID uint) ([]models.Order, error) {
	orders, err := s.orders.BySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return collection.Map(nonNil(orders), func(o models.Order) models.Order {
		return ProjectForSeller(o, sellerID)
	}), nil
}

func nonNil(orders []models.Order) []models.Order {
	if orders == nil {
		return []models.Order{}
	}
	return orders
}
