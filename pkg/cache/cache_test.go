package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { now = now.Add(time.Second); return now }

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), 0))

	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, mc.Len())
}

func TestLayeredCache_PromotesFromL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Second))
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", []byte(`{"n":1}`), time.Hour))

	type payload struct{ N int }
	got, err := GetJSON[payload](ctx, lc, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, got.N)

	ttl, ok := lc.memCache.TTL("k")
	require.True(t, ok)
	assert.LessOrEqual(t, ttl, time.Second)

	require.NoError(t, lc.Delete(ctx, "k"))
	_, err = lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetJSON(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, SetJSON(ctx, mc, Key("history", "AAPL", "1y"), []float64{1.5, 2}, time.Minute))
	got, err := GetJSON[[]float64](ctx, mc, "history:AAPL:1y")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2}, got)
}

func TestLayeredCache_L1NeverOutlivesL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Hour))
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", []byte("v"), 2*time.Second))
	_, err := lc.Get(ctx, "k")
	require.NoError(t, err)

	ttl, ok := lc.memCache.TTL("k")
	require.True(t, ok)
	assert.LessOrEqual(t, ttl, 2*time.Second)
}

func TestMemoryCache_OverwriteKeepsSize(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(1))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "a", []byte("2"), time.Minute))
	got, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
	assert.Equal(t, 1, mc.Len())

	_, err = mc.Expiry(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
