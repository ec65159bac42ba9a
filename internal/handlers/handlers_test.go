package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/middleware"
	"github.com/go-ferrusgate/ferrusgate/internal/services"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testApp wires the full HTTP surface over a fresh in-memory store, the
// way the bootstrap package does in production.
type testApp struct {
	router *gin.Engine
	store  *store.Store
	cache  cache.Cache
	codec  *token.Codec
	cfg    *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000",
		uuid.New().String()[:8])
	s, err := store.New("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := s.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Seed("admin-test-password"))

	cfg := &config.Config{
		BaseURL:            "http://localhost:8080",
		JWTSecret:          "test-secret-key-at-least-32-characters-long",
		AccessTokenExpire:  time.Hour,
		RefreshTokenExpire: 720 * time.Hour,
		AuthCodeExpire:     5 * time.Minute,
		CacheDefaultTTL:    5 * time.Minute,
	}

	c := cache.NewLayeredCache(cache.NewMemoryCache(1000), nil, cfg.CacheDefaultTTL)
	codec := token.NewCodec(cfg.JWTSecret)

	policyService := services.NewPolicyService(s, c)
	sessionService := services.NewSessionService(s, policyService, codec, c, cfg)
	inviteService := services.NewInviteService(s)
	oauthService := services.NewOAuthService(s, codec, c, cfg)

	authHandler := NewAuthHandler(sessionService, inviteService)
	oauthHandler := NewOAuthHandler(oauthService)
	oidcHandler := NewOIDCHandler(s, cfg)
	userHandler := NewUserHandler(s, oauthService)
	adminHandler := NewAdminHandler(s, policyService, inviteService)
	healthHandler := NewHealthHandler(s, c)

	requireAuth := middleware.RequireAuth(codec, c)
	requireAdmin := middleware.RequireAdmin(s)

	router := gin.New()
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Health)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/verify-invite", authHandler.VerifyInvite)
	}
	oauth := router.Group("/oauth")
	{
		oauth.GET("/authorize", requireAuth, oauthHandler.Authorize)
		oauth.POST("/token", oauthHandler.Token)
		oauth.GET("/userinfo", requireAuth, oidcHandler.UserInfo)
	}
	wellKnown := router.Group("/.well-known")
	{
		wellKnown.GET("/openid-configuration", oidcHandler.Discovery)
		wellKnown.GET("/jwks.json", oidcHandler.JWKS)
	}
	user := router.Group("/api/user", requireAuth)
	{
		user.GET("/me", userHandler.Me)
		user.GET("/authorizations", userHandler.ListAuthorizations)
		user.DELETE("/authorizations/:client_id", userHandler.RevokeAuthorization)
	}
	admin := router.Group("/api/admin", requireAuth, requireAdmin)
	{
		admin.GET("/settings/registration", adminHandler.GetRegistrationConfig)
		admin.PUT("/settings/registration", adminHandler.UpdateRegistrationConfig)
		admin.GET("/settings/audit-logs", adminHandler.GetAuditLogs)
		admin.POST("/invites", adminHandler.CreateInvite)
		admin.GET("/invites", adminHandler.ListInvites)
		admin.GET("/invites/stats", adminHandler.InviteStats)
		admin.DELETE("/invites/:code", adminHandler.RevokeInvite)
	}

	return &testApp{router: router, store: s, cache: c, codec: codec, cfg: cfg}
}

func (app *testApp) request(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func (app *testApp) decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

// adminToken logs the seeded admin in and returns its bearer token.
func (app *testApp) adminToken(t *testing.T) string {
	t.Helper()
	w := app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "admin", "password": "admin-test-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	app.decode(t, w, &resp)
	return resp.AccessToken
}

// registerAndLogin creates a user through the API and returns its token.
func (app *testApp) registerAndLogin(t *testing.T, username, email, password string) string {
	t.Helper()
	w := app.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	app.decode(t, w, &resp)
	return resp.AccessToken
}

// authorizeCode drives GET /oauth/authorize and extracts the code from
// the redirect Location.
func (app *testApp) authorizeCode(t *testing.T, bearer, scope, state string) (code, location string) {
	t.Helper()
	path := "/oauth/authorize?response_type=code&client_id=test_client_123" +
		"&redirect_uri=" + url.QueryEscape("http://localhost:3000/callback") +
		"&scope=" + url.QueryEscape(scope)
	if state != "" {
		path += "&state=" + url.QueryEscape(state)
	}

	w := app.request(t, http.MethodGet, path, bearer, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	location = w.Header().Get("Location")
	parsed, err := url.Parse(location)
	require.NoError(t, err)
	code = parsed.Query().Get("code")
	require.NotEmpty(t, code)
	return code, location
}
