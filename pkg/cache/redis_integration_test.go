//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ironlog/ironlog/pkg/cache"
	"github.com/ironlog/ironlog/pkg/redis"
)

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, redis.Config{URL: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedis[bool](client, nil, cache.WithPrefix("ironlog-test"))

	_, err = c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "owned", true, time.Minute))
	v, err := c.Get(ctx, "owned")
	require.NoError(t, err)
	require.True(t, v)

	ttl, err := client.TTL(ctx, "ironlog-test:owned").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Delete(ctx, "owned"))
	_, err = c.Get(ctx, "owned")
	require.ErrorIs(t, err, cache.ErrNotFound)
}
