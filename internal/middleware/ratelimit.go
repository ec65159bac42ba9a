package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimit builds a per-client-IP limiter for the authentication
// endpoints. When a Redis client is provided the counters are shared
// across instances; otherwise they live in process memory.
func RateLimit(formatted string, redisClient *redis.Client) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		log.Printf("rate limit disabled: invalid rate %q: %v", formatted, err)
		return func(c *gin.Context) { c.Next() }
	}

	var limiterStore limiter.Store
	if redisClient != nil {
		limiterStore, err = limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix: "ratelimit",
		})
		if err != nil {
			log.Printf("rate limit falling back to memory store: %v", err)
			limiterStore = memory.NewStore()
		}
	} else {
		limiterStore = memory.NewStore()
	}

	return limitergin.NewMiddleware(limiter.New(limiterStore, rate))
}
