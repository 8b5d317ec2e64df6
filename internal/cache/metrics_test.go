package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *MetricsCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewMetricsCache(client, time.Minute)
}

func TestMetricsCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	userID := uuid.New()

	_, ok := c.Get(ctx, userID, "summary", 30)
	require.False(t, ok)

	c.Set(ctx, userID, "summary", 30, []byte(`{"total_tokens":450}`))

	data, ok := c.Get(ctx, userID, "summary", 30)
	require.True(t, ok)
	require.JSONEq(t, `{"total_tokens":450}`, string(data))

	// A different window is a different key.
	_, ok = c.Get(ctx, userID, "summary", 7)
	require.False(t, ok)
}

func TestMetricsCacheInvalidateIsPerUser(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	c.Set(ctx, first, "summary", 30, []byte("a"))
	c.Set(ctx, first, "cost", 7, []byte("b"))
	c.Set(ctx, second, "summary", 30, []byte("c"))

	c.Invalidate(ctx, first)

	_, ok := c.Get(ctx, first, "summary", 30)
	require.False(t, ok)
	_, ok = c.Get(ctx, first, "cost", 7)
	require.False(t, ok)

	data, ok := c.Get(ctx, second, "summary", 30)
	require.True(t, ok)
	require.Equal(t, "c", string(data))
}

func TestMetricsCacheNilIsSafe(t *testing.T) {
	var c *MetricsCache
	ctx := context.Background()

	_, ok := c.Get(ctx, uuid.New(), "summary", 30)
	require.False(t, ok)
	c.Set(ctx, uuid.New(), "summary", 30, []byte("x"))
	c.Invalidate(ctx, uuid.New())
}
