// Package cache is a small JSON read-through cache over Redis.
//
// When Redis is not configured or unreachable every call degrades to a miss
// (Get) or a no-op (Set, Del), so callers never branch on availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
)

var RDB *redis.Client

// Connect initialises the Redis client and verifies it with a ping. On
// failure RDB stays nil.
func Connect(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

// Use installs an existing client. Passing nil disables the cache.
func Use(client *redis.Client) { RDB = client }

// Close releases the client if one is connected.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// Get unmarshals the value stored at key into dest and reports a hit.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value as JSON under key for ttl.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return RDB.Set(ctx, key, data, ttl).Err()
}

// Del removes keys.
func Del(ctx context.Context, keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}

// versionTTL outlives any in-flight load, so a counter cannot expire and
// restart underneath a reader.
const versionTTL = 24 * time.Hour

func versionKey(key string) string { return key + ":v" }

var setIfVersion = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if (v or '0') ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Version returns key's invalidation counter. Read it before loading the
// value later passed to SetVersioned.
func Version(ctx context.Context, key string) int64 {
	if RDB == nil {
		return 0
	}
	v, err := RDB.Get(ctx, versionKey(key)).Int64()
	if err != nil {
		return 0
	}
	return v
}

// SetVersioned stores value under key only while key's counter still equals
// version, so a load that raced an Invalidate cannot put stale data back.
func SetVersioned(ctx context.Context, key string, version int64, value interface{}, ttl time.Duration) (bool, error) {
	if RDB == nil {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	n, err := setIfVersion.Run(ctx, RDB, []string{key, versionKey(key)},
		version, data, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("cache: set %s: %w", key, err)
	}
	return n == 1, nil
}

// Invalidate bumps key's counter and deletes the cached value.
func Invalidate(ctx context.Context, key string) error {
	if RDB == nil {
		return nil
	}
	_, err := RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, versionKey(key))
		p.Expire(ctx, versionKey(key), versionTTL)
		p.Del(ctx, key)
		return nil
	})
	return err
}
