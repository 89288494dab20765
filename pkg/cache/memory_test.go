package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory[V any](t *testing.T, opts ...MemoryOption) (*Memory[V], *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory[V](append([]MemoryOption{WithSweepInterval(0)}, opts...)...)
	m.now = clk.Now
	t.Cleanup(func() { _ = m.Close() })
	return m, clk
}

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestMemory[int](t)

	_, err := m.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "a", 1, time.Minute))
	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	require.NoError(t, m.Set(ctx, "a", 2, time.Minute))
	v, err = m.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, clk := newTestMemory[string](t, WithDefaultTTL(time.Second))

	require.NoError(t, m.Set(ctx, "explicit", "x", time.Minute))
	require.NoError(t, m.Set(ctx, "default", "y", 0))

	clk.Advance(2 * time.Second)
	_, err := m.Get(ctx, "default")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "explicit")
	require.NoError(t, err)

	clk.Advance(time.Minute)
	m.purgeExpired()
	require.Zero(t, m.Len())
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestMemory[string](t, WithMaxEntries(2))

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "b", "2", time.Minute))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3", time.Minute))
	require.Equal(t, 2, m.Len())

	_, err = m.Get(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "a")
	require.NoError(t, err)
}

func TestMemoryClose(t *testing.T) {
	t.Parallel()

	m := NewMemory[int](WithSweepInterval(time.Millisecond))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.ErrorIs(t, m.Set(context.Background(), "a", 1, 0), ErrClosed)
}
