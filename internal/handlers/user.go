package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/apperr"
	"github.com/go-ferrusgate/ferrusgate/internal/middleware"
	"github.com/go-ferrusgate/ferrusgate/internal/services"
	"github.com/go-ferrusgate/ferrusgate/internal/store"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the authenticated user surface.
type UserHandler struct {
	store        *store.Store
	oauthService *services.OAuthService
}

func NewUserHandler(s *store.Store, os *services.OAuthService) *UserHandler {
	return &UserHandler{store: s, oauthService: os}
}

type userProfileResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// Me handles GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
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

	c.JSON(http.StatusOK, userProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	})
}

// ListAuthorizations handles GET /api/user/authorizations
func (h *UserHandler) ListAuthorizations(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apperr.JSON(c, apperr.KindUnauthorized, "authentication required")
		return
	}

	authorizations, err := h.store.ListUserAuthorizations(userID)
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to list authorizations")
		return
	}
	c.JSON(http.StatusOK, authorizations)
}

// RevokeAuthorization handles DELETE /api/user/authorizations/{client_id},
// revoking every token the subject holds for the client.
func (h *UserHandler) RevokeAuthorization(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apperr.JSON(c, apperr.KindUnauthorized, "authentication required")
		return
	}

	clientID := c.Param("client_id")
	if clientID == "" {
		apperr.JSON(c, apperr.KindBadRequest, "client_id is required")
		return
	}

	if err := h.oauthService.RevokeClientTokens(c.Request.Context(), userID, clientID); err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to revoke authorization")
		return
	}
	c.Status(http.StatusNoContent)
}
