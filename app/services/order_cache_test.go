package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marketplace/app/models"
)

// memCache applies the same version rule as the Redis cache.
type memCache struct {
	mu        sync.Mutex
	values    map[string][]byte
	versions  map[string]int64
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	data, ok := c.values[key]
	c.mu.Unlock()
	return ok && json.Unmarshal(data, dest) == nil
}

func (c *memCache) Version(_ context.Context, key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key]
}

func (c *memCache) SetVersioned(_ context.Context, key string, version int64, value interface{}, _ time.Duration) (bool, error) {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return false, nil
	}
	c.values[key] = data
	return true, nil
}

func (c *memCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	delete(c.values, key)
	return nil
}

func TestGetOrder_CachesUntilStatusChanges(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	p := f.product(seller.ID, "mug", "20.00", 5)
	f.cart(customer.ID, line{p, 1})

	svc := NewOrderService(f.db)
	mem := newMemCache()
	svc.cache = mem

	order, err := svc.PlaceOrder(ctx, customer.ID, completeAddress)
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, order.ID, Actor{ID: customer.ID, Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Contains(t, mem.values, orderCacheKey(order.ID))

	_, err = svc.AdvanceStatus(ctx, order.ID, Actor{ID: seller.ID, Role: models.RoleSeller}, models.StatusProcessing)
	require.NoError(t, err)
	assert.NotContains(t, mem.values, orderCacheKey(order.ID))

	got, err := svc.GetOrder(ctx, order.ID, Actor{ID: customer.ID, Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, got.Status)
}

func TestGetOrder_LoadRacingStatusWriteIsNotCached(t *testing.T) {
	f := newFixture(t)
	customer := f.user("carol", models.RoleCustomer)
	seller := f.user("sam", models.RoleSeller)
	p := f.product(seller.ID, "mug", "20.00", 5)
	f.cart(customer.ID, line{p, 1})

	svc := NewOrderService(f.db)
	mem := newMemCache()
	svc.cache = mem

	order, err := svc.PlaceOrder(ctx, customer.ID, completeAddress)
	require.NoError(t, err)

	// The seller's write commits after the read loaded the Pending row but
	// before it stores it.
	mem.beforeSet = func() {
		_, err := svc.AdvanceStatus(ctx, order.ID, Actor{ID: seller.ID, Role: models.RoleSeller}, models.StatusProcessing)
		require.NoError(t, err)
	}

	buyer := Actor{ID: customer.ID, Role: models.RoleCustomer}
	stale, err := svc.GetOrder(ctx, order.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stale.Status)
	assert.NotContains(t, mem.values, orderCacheKey(order.ID))

	fresh, err := svc.GetOrder(ctx, order.ID, buyer)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, fresh.Status)
}
