package cache

import (
	"context"
	"time"
)

// expirer is implemented by second levels that can report remaining lifetime.
type expirer interface {
	Expiry(ctx context.Context, key string) (time.Duration, error)
}

// LayeredCache keeps a small MemoryCache (L1) in front of a shared Store (L2).
// Writes go through to L2; L1 never holds an entry longer than MemoryTTL or
// longer than L2 still will.
type LayeredCache struct {
	memCache  *MemoryCache
	l2        Store
	memoryTTL time.Duration
}

func NewLayeredCache(l2 Store, opts ...LayeredOption) *LayeredCache {
	cfg := configure(opts)
	return &LayeredCache{
		memCache:  NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		l2:        l2,
		memoryTTL: cfg.MemoryTTL,
	}
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := lc.memCache.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err := lc.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var remaining time.Duration
	if e, ok := lc.l2.(expirer); ok {
		if d, err := e.Expiry(ctx, key); err == nil {
			remaining = d
		}
	}
	_ = lc.memCache.Set(ctx, key, v, lc.l1TTL(remaining))
	return v, nil
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, lc.l1TTL(expiration))
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	_ = lc.memCache.Close()
	return lc.l2.Close()
}

// l1TTL caps expiration at memoryTTL; zero means no known bound.
func (lc *LayeredCache) l1TTL(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.memoryTTL {
		return expiration
	}
	return lc.memoryTTL
}
