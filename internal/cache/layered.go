package cache

import (
	"context"
	"log"
	"time"
)

// Compile-time interface check.
var _ Cache = (*LayeredCache)(nil)

// LayeredCache combines the in-process tier with an optional shared tier.
// Reads go tier 1 → tier 2 with promotion; writes go tier 1 then tier 2.
// Tier-2 failures are logged and degrade to tier-1-only behavior instead
// of failing the operation.
type LayeredCache struct {
	tier1      Cache
	tier2      Cache // may be nil
	defaultTTL time.Duration
}

// NewLayeredCache composes the two tiers. tier2 may be nil when the shared
// cache is disabled or was unreachable at startup.
func NewLayeredCache(tier1, tier2 Cache, defaultTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		tier1:      tier1,
		tier2:      tier2,
		defaultTTL: defaultTTL,
	}
}

// Get reads tier 1 first, falling back to tier 2 and promoting hits.
func (l *LayeredCache) Get(ctx context.Context, key string) (string, error) {
	if value, err := l.tier1.Get(ctx, key); err == nil {
		return value, nil
	}

	if l.tier2 == nil {
		return "", ErrCacheMiss
	}

	value, err := l.tier2.Get(ctx, key)
	if err != nil {
		return "", ErrCacheMiss
	}

	// Promote with the default TTL; the shared tier keeps the
	// authoritative expiry.
	_ = l.tier1.Set(ctx, key, value, l.defaultTTL)
	return value, nil
}

// Set writes through both tiers. A tier-2 write failure is logged but does
// not abort the operation.
func (l *LayeredCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = l.defaultTTL
	}

	if err := l.tier1.Set(ctx, key, value, ttl); err != nil {
		return err
	}

	if l.tier2 != nil {
		if err := l.tier2.Set(ctx, key, value, ttl); err != nil {
			log.Printf("cache: tier-2 set failed for %s: %v", key, err)
		}
	}
	return nil
}

// Delete removes the key from both tiers.
func (l *LayeredCache) Delete(ctx context.Context, key string) error {
	err := l.tier1.Delete(ctx, key)
	if l.tier2 != nil {
		if err2 := l.tier2.Delete(ctx, key); err2 != nil {
			log.Printf("cache: tier-2 delete failed for %s: %v", key, err2)
		}
	}
	return err
}

// Exists checks tier 1 first, then tier 2.
func (l *LayeredCache) Exists(ctx context.Context, key string) bool {
	if l.tier1.Exists(ctx, key) {
		return true
	}
	return l.tier2 != nil && l.tier2.Exists(ctx, key)
}

// Close closes both tiers.
func (l *LayeredCache) Close() error {
	err := l.tier1.Close()
	if l.tier2 != nil {
		if err2 := l.tier2.Close(); err == nil {
			err = err2
		}
	}
	return err
}

// Health reports healthy when tier 1 is healthy; a degraded tier 2 does
// not fail the process.
func (l *LayeredCache) Health(ctx context.Context) error {
	return l.tier1.Health(ctx)
}
