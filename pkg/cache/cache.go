package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value cache with per-entry TTL. A zero TTL passed to Set
// means the backend's default.
type Cache[V any] interface {
	// Get returns ErrNotFound when key is missing or expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Marshaler converts values for byte-oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// Loader computes a value on a cache miss. It returns the TTL to store the
// value with; a negative TTL returns the value without caching it.
type Loader[V any] func(ctx context.Context) (V, time.Duration, error)

type loaded[V any] struct {
	val V
	ttl time.Duration
}

var group singleflight.Group

// GetOrSet returns the cached value for key, or calls load on a miss.
// Concurrent misses on the same key share one load call. Cache read and
// write failures fall back to load and are otherwise ignored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, load Loader[V]) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := group.Do(key, func() (any, error) {
		v, ttl, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	// Keys are shared across value types; a foreign result means a collision.
	r, ok := res.(loaded[V])
	if !ok {
		v, _, err := load(ctx)
		return v, err
	}
	if r.ttl >= 0 {
		_ = c.Set(ctx, key, r.val, r.ttl)
	}
	return r.val, nil
}
