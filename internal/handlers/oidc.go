package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-ferrusgate/ferrusgate/internal/apperr"
	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/middleware"
	"github.com/go-ferrusgate/ferrusgate/internal/store"

	"github.com/gin-gonic/gin"
)

// OIDCHandler serves the discovery, JWKS, and userinfo endpoints.
type OIDCHandler struct {
	store *store.Store
	cfg   *config.Config
}

func NewOIDCHandler(s *store.Store, cfg *config.Config) *OIDCHandler {
	return &OIDCHandler{store: s, cfg: cfg}
}

// discoveryMetadata holds the OIDC Provider Metadata returned by the
// discovery endpoint.
type discoveryMetadata struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserinfoEndpoint                 string   `json:"userinfo_endpoint"`
	JWKSURI                          string   `json:"jwks_uri"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                  []string `json:"scopes_supported"`
	TokenEndpointAuthMethods         []string `json:"token_endpoint_auth_methods_supported"`
	ClaimsSupported                  []string `json:"claims_supported"`
}

// Discovery handles GET /.well-known/openid-configuration
func (h *OIDCHandler) Discovery(c *gin.Context) {
	base := strings.TrimRight(h.cfg.BaseURL, "/")
	meta := discoveryMetadata{
		Issuer:                           base,
		AuthorizationEndpoint:            base + "/oauth/authorize",
		TokenEndpoint:                    base + "/oauth/token",
		UserinfoEndpoint:                 base + "/oauth/userinfo",
		JWKSURI:                          base + "/.well-known/jwks.json",
		ResponseTypesSupported:           []string{"code"},
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"HS256"},
		ScopesSupported:                  []string{"openid", "profile", "email"},
		TokenEndpointAuthMethods:         []string{"client_secret_post"},
		ClaimsSupported:                  []string{"sub", "name", "email", "email_verified"},
	}
	c.JSON(http.StatusOK, meta)
}

type jwksResponse struct {
	Keys []any `json:"keys"`
}

// JWKS handles GET /.well-known/jwks.json. Signing keys are symmetric in
// this version, so no key material is published.
func (h *OIDCHandler) JWKS(c *gin.Context) {
	c.JSON(http.StatusOK, jwksResponse{Keys: []any{}})
}

type userInfoResponse struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// UserInfo handles GET /oauth/userinfo, resolving the subject from the
// bearer credential validated by RequireAuth.
func (h *OIDCHandler) UserInfo(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apperr.JSON(c, apperr.KindUnauthorized, "authentication required")
		return
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.JSON(c, apperr.KindUnauthorized, "unknown subject")
		} else {
			apperr.JSON(c, apperr.KindInternal, "failed to load user")
		}
		return
	}

	c.JSON(http.StatusOK, userInfoResponse{
		Sub:           strconv.FormatInt(user.ID, 10),
		Name:          user.Username,
		Email:         user.Email,
		EmailVerified: true,
	})
}
