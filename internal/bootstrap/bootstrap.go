package bootstrap

import (
	"net/http"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/metrics"
	"github.com/go-ferrusgate/ferrusgate/internal/services"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	Cache                cache.Cache
	Codec                *token.Codec
	MetricsRecorder      metrics.Recorder
	RateLimitRedisClient *redis.Client

	// Services
	PolicyService  *services.PolicyService
	SessionService *services.SessionService
	InviteService  *services.InviteService
	OAuthService   *services.OAuthService

	// HTTP
	Handlers handlerSet
	Router   *gin.Engine
	Server   *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

func (app *Application) initializeInfrastructure() error {
	var err error

	app.DB, err = initializeDatabase(app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = metrics.Init(app.Config.MetricsEnabled)
	app.Cache = initializeCache(app.Config, app.MetricsRecorder)
	app.Codec = token.NewCodec(app.Config.JWTSecret)
	app.RateLimitRedisClient = initializeRateLimitRedisClient(app.Config)

	return nil
}

func (app *Application) initializeBusinessLayer() {
	app.PolicyService = services.NewPolicyService(app.DB, app.Cache)
	app.SessionService = services.NewSessionService(
		app.DB, app.PolicyService, app.Codec, app.Cache, app.Config)
	app.InviteService = services.NewInviteService(app.DB)
	app.OAuthService = services.NewOAuthService(app.DB, app.Codec, app.Cache, app.Config)
}

func (app *Application) initializeHTTPLayer() {
	app.Handlers = initializeHandlers(app)
	app.Router = setupRouter(app)
	app.Server = createHTTPServer(app.Config, app.Router)
}
