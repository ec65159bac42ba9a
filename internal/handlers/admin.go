package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/apperr"
	"github.com/go-ferrusgate/ferrusgate/internal/middleware"
	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/services"
	"github.com/go-ferrusgate/ferrusgate/internal/store"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the role-gated control plane: registration policy,
// audit history, and invite management. RequireAdmin runs ahead of every
// route here.
type AdminHandler struct {
	store         *store.Store
	policyService *services.PolicyService
	inviteService *services.InviteService
}

func NewAdminHandler(
	s *store.Store,
	ps *services.PolicyService,
	is *services.InviteService,
) *AdminHandler {
	return &AdminHandler{store: s, policyService: ps, inviteService: is}
}

// GetRegistrationConfig handles GET /api/admin/settings/registration
func (h *AdminHandler) GetRegistrationConfig(c *gin.Context) {
	cfg, err := h.policyService.GetConfig(c.Request.Context())
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to load registration config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type settingsUpdateResponse struct {
	Message string `json:"message"`
}

// UpdateRegistrationConfig handles PUT /api/admin/settings/registration
func (h *AdminHandler) UpdateRegistrationConfig(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apperr.JSON(c, apperr.KindUnauthorized, "authentication required")
		return
	}

	var cfg models.RegistrationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		apperr.JSON(c, apperr.KindBadRequest, "invalid request body")
		return
	}

	if cfg.MinUsernameLength < 1 || cfg.MaxUsernameLength < cfg.MinUsernameLength {
		apperr.JSON(c, apperr.KindBadRequest, "invalid username length bounds")
		return
	}
	if cfg.MinPasswordLength < 1 {
		apperr.JSON(c, apperr.KindBadRequest, "invalid minimum password length")
		return
	}
	if cfg.AllowedEmailDomains == nil {
		cfg.AllowedEmailDomains = []string{}
	}

	if err := h.policyService.UpdateConfig(c.Request.Context(), cfg, userID); err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to update registration config")
		return
	}

	c.JSON(http.StatusOK, settingsUpdateResponse{
		Message: "Configuration updated successfully",
	})
}

type auditLogEntry struct {
	ID         int64   `json:"id"`
	ConfigKey  string  `json:"config_key"`
	OldValue   *string `json:"old_value"`
	NewValue   *string `json:"new_value"`
	ChangedBy  int64   `json:"changed_by"`
	ChangeType string  `json:"change_type"`
	ChangedAt  string  `json:"changed_at"`
}

// GetAuditLogs handles GET /api/admin/settings/audit-logs with optional
// limit and config_key query parameters.
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			apperr.JSON(c, apperr.KindBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	logs, err := h.store.GetConfigAuditLogs(c.Query("config_key"), limit)
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to load audit logs")
		return
	}

	entries := make([]auditLogEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, auditLogEntry{
			ID:         l.ID,
			ConfigKey:  l.ConfigKey,
			OldValue:   l.OldValue,
			NewValue:   l.NewValue,
			ChangedBy:  l.ChangedBy,
			ChangeType: l.ChangeType,
			ChangedAt:  l.ChangedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": entries})
}

type createInviteRequest struct {
	MaxUses        int64 `json:"max_uses"`
	ExpiresInHours int64 `json:"expires_in_hours"`
}

type createInviteResponse struct {
	Code      string  `json:"code"`
	MaxUses   int64   `json:"max_uses"`
	ExpiresAt *string `json:"expires_at"`
}

// CreateInvite handles POST /api/admin/invites
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		apperr.JSON(c, apperr.KindUnauthorized, "authentication required")
		return
	}

	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.JSON(c, apperr.KindBadRequest, "invalid request body")
		return
	}

	invite, err := h.inviteService.Create(userID, req.MaxUses, req.ExpiresInHours)
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to create invite code")
		return
	}

	resp := createInviteResponse{
		Code:    invite.Code,
		MaxUses: invite.MaxUses,
	}
	if invite.ExpiresAt != nil {
		formatted := invite.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &formatted
	}
	c.JSON(http.StatusCreated, resp)
}

type inviteInfo struct {
	Code      string  `json:"code"`
	CreatedBy int64   `json:"created_by"`
	UsedBy    *int64  `json:"used_by"`
	UsedCount int64   `json:"used_count"`
	MaxUses   int64   `json:"max_uses"`
	ExpiresAt *string `json:"expires_at"`
	CreatedAt string  `json:"created_at"`
}

// ListInvites handles GET /api/admin/invites
func (h *AdminHandler) ListInvites(c *gin.Context) {
	invites, err := h.inviteService.List()
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to list invite codes")
		return
	}

	infos := make([]inviteInfo, 0, len(invites))
	for _, invite := range invites {
		info := inviteInfo{
			Code:      invite.Code,
			CreatedBy: invite.CreatedBy,
			UsedBy:    invite.UsedBy,
			UsedCount: invite.UsedCount,
			MaxUses:   invite.MaxUses,
			CreatedAt: invite.CreatedAt.Format(time.RFC3339),
		}
		if invite.ExpiresAt != nil {
			formatted := invite.ExpiresAt.Format(time.RFC3339)
			info.ExpiresAt = &formatted
		}
		infos = append(infos, info)
	}
	c.JSON(http.StatusOK, gin.H{"invites": infos})
}

// RevokeInvite handles DELETE /api/admin/invites/{code}
func (h *AdminHandler) RevokeInvite(c *gin.Context) {
	code := c.Param("code")
	if err := h.inviteService.Revoke(code); err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			apperr.JSON(c, apperr.KindNotFound, "invite code not found")
		} else {
			apperr.JSON(c, apperr.KindInternal, "failed to revoke invite code")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invite code revoked"})
}

// InviteStats handles GET /api/admin/invites/stats
func (h *AdminHandler) InviteStats(c *gin.Context) {
	stats, err := h.inviteService.GetStats()
	if err != nil {
		apperr.JSON(c, apperr.KindInternal, "failed to compute invite stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
