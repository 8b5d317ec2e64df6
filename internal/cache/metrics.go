// Package cache holds the Redis-backed response cache for the metrics
// endpoints. Caching is best-effort: a Redis failure degrades to a fresh
// aggregation, never to an error.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MetricsCache stores serialized metrics responses keyed by user, report
// kind, and window size.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MetricsCache{client: client, ttl: ttl}
}

func (c *MetricsCache) Get(ctx context.Context, userID uuid.UUID, report string, days int) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key(userID, report, days)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *MetricsCache) Set(ctx context.Context, userID uuid.UUID, report string, days int, value []byte) {
	if c == nil || c.client == nil || len(value) == 0 {
		return
	}
	c.client.Set(ctx, key(userID, report, days), value, c.ttl)
}

// Invalidate drops every cached report for the user. Called after a new
// call log lands so readers converge quickly.
func (c *MetricsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	pattern := fmt.Sprintf("metrics:%s:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}

func key(userID uuid.UUID, report string, days int) string {
	return fmt.Sprintf("metrics:%s:%s:%d", userID, report, days)
}
