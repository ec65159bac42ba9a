package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/cache"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000",
		uuid.New().String()[:8])
	s, err := store.New("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := s.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:            "http://localhost:8080",
		JWTSecret:          "test-secret-key-at-least-32-characters-long",
		AccessTokenExpire:  time.Hour,
		RefreshTokenExpire: 720 * time.Hour,
		AuthCodeExpire:     5 * time.Minute,
		CacheDefaultTTL:    5 * time.Minute,
	}
}

func testCache() cache.Cache {
	return cache.NewLayeredCache(cache.NewMemoryCache(1000), nil, 5*time.Minute)
}

func testCodec() *token.Codec {
	return token.NewCodec(testConfig().JWTSecret)
}

func seedClient(t *testing.T, s *store.Store) *models.OAuthClient {
	t.Helper()
	client := &models.OAuthClient{
		ClientID:     "test_client_123",
		ClientSecret: "test_secret_456",
		Name:         "Test Client",
		RedirectURIs: models.EncodeRedirectURIs([]string{"http://localhost:3000/callback"}),
		Scopes:       "openid profile email read write",
	}
	require.NoError(t, s.DB().Create(client).Error)
	return client
}

func seedUser(t *testing.T, s *store.Store, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     "user-" + uuid.New().String()[:8],
		Email:        uuid.New().String()[:8] + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.CreateUser(u))
	return u
}
