package bootstrap

import (
	"log"

	"github.com/go-ferrusgate/ferrusgate/internal/config"
)

const defaultJWTSecret = "change-me-to-a-256-bit-secret"

// validateConfiguration warns about insecure or inconsistent settings.
// Only a missing database DSN is fatal, and that surfaces from the store.
func validateConfiguration(cfg *config.Config) {
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("WARNING: JWT_SECRET is the built-in default; set a real secret in production")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters")
	}
	if cfg.EnableRedisCache && cfg.RedisAddr == "" {
		log.Println("WARNING: ENABLE_REDIS_CACHE is set but REDIS_URL is empty; shared tier disabled")
	}
	if !cfg.EnableMemoryCache {
		log.Println("WARNING: memory cache disabled; every lookup will hit the store or shared tier")
	}
}
