package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCacheDegradesToMiss(t *testing.T) {
	Use(nil)
	ctx := context.Background()

	assert.NoError(t, Set(ctx, "orders:1", map[string]int{"id": 1}, time.Minute))

	var dest map[string]int
	assert.False(t, Get(ctx, "orders:1", &dest))
	assert.Nil(t, dest)
	assert.NoError(t, Del(ctx, "orders:1"))
	assert.NoError(t, Close())
}

func TestDisabledCacheIgnoresVersionedWrites(t *testing.T) {
	Use(nil)
	ctx := context.Background()

	assert.Zero(t, Version(ctx, "orders:1"))
	stored, err := SetVersioned(ctx, "orders:1", 0, map[string]int{"id": 1}, time.Minute)
	assert.NoError(t, err)
	assert.False(t, stored)
	assert.NoError(t, Invalidate(ctx, "orders:1"))
}
