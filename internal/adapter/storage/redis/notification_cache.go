package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NotificationCache implements ports.NotificationCache using Redis. Entries
// are keyed by the gateway payment id so redelivered notifications can be
// answered without touching the purchase store.
type NotificationCache struct {
	client *goredis.Client
	prefix string
}

// NewNotificationCache creates a new Redis-backed notification cache.
func NewNotificationCache(client *goredis.Client) *NotificationCache {
	return &NotificationCache{
		client: client,
		prefix: "itn:",
	}
}

// Get retrieves a cached reconcile result by gateway payment id.
// Returns nil, nil if the key does not exist.
func (c *NotificationCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis notification get: %w", err)
	}
	return val, nil
}

// Set stores a reconcile result with TTL.
func (c *NotificationCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis notification set: %w", err)
	}
	return nil
}
