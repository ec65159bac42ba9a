package bootstrap

import (
	"github.com/go-ferrusgate/ferrusgate/internal/metrics"
	"github.com/go-ferrusgate/ferrusgate/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setupRouter(app *Application) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	if app.Config.MetricsEnabled {
		router.Use(metrics.HTTPMiddleware(app.MetricsRecorder))
		router.GET("/metrics", metrics.Handler())
	}

	requireAuth := middleware.RequireAuth(app.Codec, app.Cache)
	requireAdmin := middleware.RequireAdmin(app.DB)

	// Health probes
	health := router.Group("/health")
	{
		health.GET("", app.Handlers.Health.Health)
		health.GET("/live", app.Handlers.Health.Live)
		health.GET("/ready", app.Handlers.Health.Ready)
	}

	// Local registration and login
	authGroup := router.Group("/api/auth")
	if app.Config.RateLimitEnabled {
		authGroup.Use(middleware.RateLimit(app.Config.RateLimitAuth, app.RateLimitRedisClient))
	}
	{
		authGroup.POST("/register", app.Handlers.Auth.Register)
		authGroup.POST("/login", app.Handlers.Auth.Login)
		authGroup.POST("/verify-invite", app.Handlers.Auth.VerifyInvite)
	}

	// OAuth 2.0 / OIDC
	oauth := router.Group("/oauth")
	{
		oauth.GET("/authorize", requireAuth, app.Handlers.OAuth.Authorize)
		oauth.POST("/token", app.Handlers.OAuth.Token)
		oauth.GET("/userinfo", requireAuth, app.Handlers.OIDC.UserInfo)
	}

	wellKnown := router.Group("/.well-known")
	{
		wellKnown.GET("/openid-configuration", app.Handlers.OIDC.Discovery)
		wellKnown.GET("/jwks.json", app.Handlers.OIDC.JWKS)
	}

	// Authenticated user surface
	user := router.Group("/api/user", requireAuth)
	{
		user.GET("/me", app.Handlers.User.Me)
		user.GET("/authorizations", app.Handlers.User.ListAuthorizations)
		user.DELETE("/authorizations/:client_id", app.Handlers.User.RevokeAuthorization)
	}

	// Admin control plane
	admin := router.Group("/api/admin", requireAuth, requireAdmin)
	{
		admin.GET("/settings/registration", app.Handlers.Admin.GetRegistrationConfig)
		admin.PUT("/settings/registration", app.Handlers.Admin.UpdateRegistrationConfig)
		admin.GET("/settings/audit-logs", app.Handlers.Admin.GetAuditLogs)
		admin.POST("/invites", app.Handlers.Admin.CreateInvite)
		admin.GET("/invites", app.Handlers.Admin.ListInvites)
		admin.GET("/invites/stats", app.Handlers.Admin.InviteStats)
		admin.DELETE("/invites/:code", app.Handlers.Admin.RevokeInvite)
	}

	return router
}
