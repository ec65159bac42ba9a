package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-ferrusgate/ferrusgate/internal/apperr"
	"github.com/go-ferrusgate/ferrusgate/internal/middleware"
	"github.com/go-ferrusgate/ferrusgate/internal/services"

	"github.com/gin-gonic/gin"
)

// OAuthHandler serves the authorization-code endpoints.
type OAuthHandler struct {
	oauthService *services.OAuthService
}

func NewOAuthHandler(os *services.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthService: os}
}

// Authorize handles GET /oauth/authorize. The subject comes from the
// bearer credential validated by RequireAuth; on success the user agent
// is redirected to redirect_uri with the code and the state echoed
// verbatim.
func (h *OAuthHandler) Authorize(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apperr.JSON(c, apperr.KindUnauthorized, "authentication required")
		return
	}

	req := services.AuthorizeRequest{
		ResponseType: c.Query("response_type"),
		ClientID:     c.Query("client_id"),
		RedirectURI:  c.Query("redirect_uri"),
		Scope:        c.Query("scope"),
		State:        c.Query("state"),
	}

	code, err := h.oauthService.Authorize(c.Request.Context(), req, userID)
	if err != nil {
		kind, message := oauthErrorKind(err)
		apperr.JSON(c, kind, message)
		return
	}

	redirect, err := url.Parse(req.RedirectURI)
	if err != nil {
		apperr.JSON(c, apperr.KindInvalidRedirectURI, "invalid redirect_uri")
		return
	}
	query := redirect.Query()
	query.Set("code", code)
	if req.State != "" {
		query.Set("state", req.State)
	}
	redirect.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}

type tokenRequest struct {
	GrantType    string `json:"grant_type" form:"grant_type"`
	Code         string `json:"code" form:"code"`
	ClientID     string `json:"client_id" form:"client_id"`
	ClientSecret string `json:"client_secret" form:"client_secret"`
	RedirectURI  string `json:"redirect_uri" form:"redirect_uri"`
}

// Token handles POST /oauth/token. Client credentials arrive in the body
// (JSON or form-encoded).
func (h *OAuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.JSON(c, apperr.KindBadRequest, "invalid request body")
		return
	}

	result, err := h.oauthService.Token(c.Request.Context(), services.TokenRequest{
		GrantType:    req.GrantType,
		Code:         req.Code,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		kind, message := oauthErrorKind(err)
		apperr.JSON(c, kind, message)
		return
	}

	c.JSON(http.StatusOK, result)
}

// oauthErrorKind maps OAuth service errors onto the stable boundary kinds.
func oauthErrorKind(err error) (apperr.Kind, string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedResponseType),
		errors.Is(err, services.ErrUnsupportedGrantType):
		return apperr.KindBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidClient):
		return apperr.KindInvalidClient, "invalid client credentials"
	case errors.Is(err, services.ErrInvalidRedirectURI):
		return apperr.KindInvalidRedirectURI, "redirect URI not registered for client"
	case errors.Is(err, services.ErrInvalidScope):
		return apperr.KindBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidAuthCode):
		return apperr.KindInvalidAuthCode, "invalid authorization code"
	case errors.Is(err, services.ErrUnknownSubject):
		return apperr.KindUnauthorized, "unknown subject"
	default:
		return apperr.KindInternal, "internal error"
	}
}
