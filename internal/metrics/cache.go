package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
)

// Compile-time interface check.
var _ cache.Cache = (*CacheWrapper)(nil)

// CacheWrapper instruments a Cache with hit/miss/error counters.
type CacheWrapper struct {
	inner cache.Cache
	rec   Recorder
	tier  string
}

// WrapCache decorates inner with metrics under the given tier label.
func WrapCache(inner cache.Cache, rec Recorder, tier string) *CacheWrapper {
	return &CacheWrapper{inner: inner, rec: rec, tier: tier}
}

func (w *CacheWrapper) Get(ctx context.Context, key string) (string, error) {
	value, err := w.inner.Get(ctx, key)
	switch {
	case err == nil:
		w.rec.IncCacheHit(w.tier)
	case errors.Is(err, cache.ErrCacheMiss):
		w.rec.IncCacheMiss()
	default:
		w.rec.IncCacheError(w.tier)
	}
	return value, err
}

func (w *CacheWrapper) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	err := w.inner.Set(ctx, key, value, ttl)
	if err != nil {
		w.rec.IncCacheError(w.tier)
	}
	return err
}

func (w *CacheWrapper) Delete(ctx context.Context, key string) error {
	err := w.inner.Delete(ctx, key)
	if err != nil {
		w.rec.IncCacheError(w.tier)
	}
	return err
}

func (w *CacheWrapper) Exists(ctx context.Context, key string) bool {
	return w.inner.Exists(ctx, key)
}

func (w *CacheWrapper) Close() error { return w.inner.Close() }

func (w *CacheWrapper) Health(ctx context.Context) error { return w.inner.Health(ctx) }
