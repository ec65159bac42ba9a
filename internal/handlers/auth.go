package handlers

import (
	"errors"
	"net/http"

	"github.com/go-ferrusgate/ferrusgate/internal/apperr"
	"github.com/go-ferrusgate/ferrusgate/internal/services"
	"github.com/go-ferrusgate/ferrusgate/internal/store"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves local registration, login, and the public invite
// verification endpoint.
type AuthHandler struct {
	sessionService *services.SessionService
	inviteService  *services.InviteService
}

func NewAuthHandler(ss *services.SessionService, is *services.InviteService) *AuthHandler {
	return &AuthHandler{sessionService: ss, inviteService: is}
}

type registerRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

type registerResponse struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.JSON(c, apperr.KindBadRequest, "invalid request body")
		return
	}

	user, err := h.sessionService.Register(c.Request.Context(), services.RegistrationCandidate{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		apperr.JSON(c, registrationErrorKind(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		UserID:  user.ID,
		Message: "User created successfully",
	})
}

// registrationErrorKind maps policy and store failures onto boundary
// kinds. Invite failures share BadRequest with policy violations; only a
// unique-constraint race surfaces Conflict.
func registrationErrorKind(err error) apperr.Kind {
	var policyErr *services.PolicyError
	switch {
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		return apperr.KindConflict
	case errors.As(err, &policyErr),
		errors.Is(err, store.ErrInviteNotFound),
		errors.Is(err, store.ErrInviteExpired),
		errors.Is(err, store.ErrInviteUsedUp),
		errors.Is(err, store.ErrNotFound):
		return apperr.KindBadRequest
	default:
		return apperr.KindInternal
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.JSON(c, apperr.KindBadRequest, "invalid request body")
		return
	}

	result, err := h.sessionService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			apperr.JSON(c, apperr.KindInvalidCredentials, "invalid username or password")
		case errors.Is(err, services.ErrAccountDisabled):
			apperr.JSON(c, apperr.KindForbidden, err.Error())
		default:
			apperr.JSON(c, apperr.KindInternal, "login failed")
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    result.TokenType,
		ExpiresIn:    result.ExpiresIn,
	})
}

type verifyInviteRequest struct {
	Code string `json:"code"`
}

// VerifyInvite handles POST /api/auth/verify-invite (non-consuming)
func (h *AuthHandler) VerifyInvite(c *gin.Context) {
	var req verifyInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.JSON(c, apperr.KindBadRequest, "invalid request body")
		return
	}

	verification, err := h.inviteService.Verify(req.Code)
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to verify invite code")
		return
	}
	c.JSON(http.StatusOK, verification)
}
