package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// initializeCache builds the two-tier cache. An unreachable shared tier
// degrades to tier 1 only without failing the process.
func initializeCache(cfg *config.Config, rec metrics.Recorder) cache.Cache {
	var tier1 cache.Cache = cache.NewMemoryCache(cfg.MemoryCacheSize)
	if !cfg.EnableMemoryCache {
		// Tier 1 is mandatory for the layered semantics; an undersized
		// cache stands in when the operator disables it.
		tier1 = cache.NewMemoryCache(1)
	}
	tier1 = metrics.WrapCache(tier1, rec, "memory")

	var tier2 cache.Cache
	if cfg.EnableRedisCache && cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		redisCache, err := cache.NewRueidisCache(
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			"ferrusgate:",
			cfg.CacheOpTimeout,
		)
		if err != nil {
			log.Printf("Warning: shared cache unavailable, degrading to memory tier: %v", err)
		} else {
			tier2 = metrics.WrapCache(redisCache, rec, "redis")
			log.Printf("Shared cache connected: %s", cfg.RedisAddr)
		}
	}

	return cache.NewLayeredCache(tier1, tier2, cfg.CacheDefaultTTL)
}

// initializeRateLimitRedisClient creates the go-redis client backing the
// shared rate-limit store. Nil means in-process counters.
func initializeRateLimitRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.RateLimitEnabled || cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: rate-limit redis unavailable, using memory store: %v", err)
		_ = client.Close()
		return nil
	}
	return client
}
