package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ Cache = (*RueidisCache)(nil)

// RueidisCache implements Cache using Redis via the rueidis client.
// Serves as the shared tier so revocations propagate across instances.
type RueidisCache struct {
	client    rueidis.Client
	keyPrefix string
	opTimeout time.Duration
}

// NewRueidisCache creates a new Redis cache instance using rueidis.
func NewRueidisCache(
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
	opTimeout time.Duration,
) (*RueidisCache, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	// Test connection with provided context
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RueidisCache{
		client:    client,
		keyPrefix: keyPrefix,
		opTimeout: opTimeout,
	}, nil
}

func (r *RueidisCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opTimeout)
}

// Get retrieves a value from Redis.
func (r *RueidisCache) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	resp := r.client.Do(ctx, r.client.B().Get().Key(r.keyPrefix+key).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	value, err := resp.ToString()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return value, nil
}

// Set stores a value in Redis with TTL.
func (r *RueidisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.client.B().Set().
		Key(r.keyPrefix + key).
		Value(value).
		Ex(ttl).
		Build()

	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes a key from Redis.
func (r *RueidisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.client.B().Del().Key(r.keyPrefix + key).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Exists reports whether the key is present. Backend failures count as
// absent; the store remains the source of truth on a miss.
func (r *RueidisCache) Exists(ctx context.Context, key string) bool {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.client.B().Exists().Key(r.keyPrefix + key).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	return err == nil && n > 0
}

// Close closes the Redis connection.
func (r *RueidisCache) Close() error {
	r.client.Close()
	return nil
}

// Health checks if Redis is reachable.
func (r *RueidisCache) Health(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
