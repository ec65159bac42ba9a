package cache

import (
	"context"
	"time"
)

// Cache defines the primitive operations for a key-value cache.
type Cache interface {
	// Get retrieves a single value from cache.
	// Returns ErrCacheMiss if the key does not exist or has expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a single value in cache with TTL
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key is present and unexpired
	Exists(ctx context.Context, key string) bool

	// Close closes the cache connection
	Close() error

	// Health checks if the cache is healthy
	Health(ctx context.Context) error
}
