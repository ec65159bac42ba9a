package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	ServerHost string
	ServerPort int
	BaseURL    string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Redis (shared cache tier + rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT settings
	JWTSecret          string
	AccessTokenExpire  time.Duration
	RefreshTokenExpire time.Duration
	AuthCodeExpire     time.Duration

	// Cache settings
	EnableMemoryCache bool
	MemoryCacheSize   int
	EnableRedisCache  bool
	CacheDefaultTTL   time.Duration
	CacheOpTimeout    time.Duration // per-operation deadline for the shared tier

	// Rate limiting (limiter period format, e.g. "30-M")
	RateLimitEnabled bool
	RateLimitAuth    string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // "text" or "json"

	// Metrics
	MetricsEnabled bool

	// Seed data
	DefaultAdminPassword string // empty = random password logged at startup
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_URL", "ferrusgate.db")
	} else {
		dsn = getEnv("DATABASE_URL", "")
	}

	host := getEnv("SERVER_HOST", "127.0.0.1")
	port := getEnvInt("SERVER_PORT", 8080)

	return &Config{
		ServerHost: host,
		ServerPort: port,
		BaseURL:    getEnv("BASE_URL", fmt.Sprintf("http://%s:%d", host, port)),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		RedisAddr:     getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-to-a-256-bit-secret"),
		AccessTokenExpire:  getEnvDuration("ACCESS_TOKEN_EXPIRE", time.Hour),
		RefreshTokenExpire: getEnvDuration("REFRESH_TOKEN_EXPIRE", 720*time.Hour),
		AuthCodeExpire:     getEnvDuration("AUTHORIZATION_CODE_EXPIRE", 5*time.Minute),

		EnableMemoryCache: getEnvBool("ENABLE_MEMORY_CACHE", true),
		MemoryCacheSize:   getEnvInt("MEMORY_CACHE_SIZE", 10000),
		EnableRedisCache:  getEnvBool("ENABLE_REDIS_CACHE", false),
		CacheDefaultTTL:   getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
		CacheOpTimeout:    getEnvDuration("CACHE_OP_TIMEOUT", 200*time.Millisecond),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnv("RATE_LIMIT_AUTH", "30-M"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts either a Go duration string ("5m") or a bare
// second count ("300"), matching the numeric values used in deployments.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	var secs int64
	if _, err := fmt.Sscanf(value, "%d", &secs); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

