package handlers

import (
	"net/http"
	"testing"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminGate_NonAdminForbidden(t *testing.T) {
	app := newTestApp(t)
	bearer := app.registerAndLogin(t, "pleb", "p@example.com", "SecurePass1!")

	w := app.request(t, http.MethodGet, "/api/admin/invites", bearer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Forbidden"`)
}

func TestAdminGate_DemotionTakesEffectImmediately(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)

	// Works while the stored role is admin
	w := app.request(t, http.MethodGet, "/api/admin/invites", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Demote in the store; the unexpired token is refused on the next
	// request because the gate re-reads the role
	require.NoError(t, app.store.DB().Model(&models.User{}).
		Where("username = ?", "admin").Update("role", models.RoleUser).Error)

	w = app.request(t, http.MethodGet, "/api/admin/invites", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Forbidden"`)
}

func TestAdminGate_MissingToken(t *testing.T) {
	app := newTestApp(t)
	w := app.request(t, http.MethodGet, "/api/admin/invites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegistrationSettings_GetPutRoundTrip(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)

	w := app.request(t, http.MethodGet, "/api/admin/settings/registration", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	firstRead := w.Body.String()

	// Two successive reads with no intervening write are byte-equal
	w = app.request(t, http.MethodGet, "/api/admin/settings/registration", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, firstRead, w.Body.String())

	updated := gin.H{
		"allow_registration":         false,
		"allowed_email_domains":      []string{"example.com"},
		"min_username_length":        4,
		"max_username_length":        16,
		"min_password_length":        10,
		"password_require_uppercase": true,
		"password_require_lowercase": true,
		"password_require_numbers":   false,
		"password_require_special":   false,
		"require_invite_code":        false,
	}
	w = app.request(t, http.MethodPut, "/api/admin/settings/registration", adminToken, updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.request(t, http.MethodGet, "/api/admin/settings/registration", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cfg models.RegistrationConfig
	app.decode(t, w, &cfg)
	assert.False(t, cfg.AllowRegistration)
	assert.Equal(t, []string{"example.com"}, cfg.AllowedEmailDomains)
	assert.Equal(t, int64(10), cfg.MinPasswordLength)

	// The new policy is live: registration is now disabled
	w = app.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "late", "email": "late@example.com", "password": "SecurePass1!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "registration is disabled")
}

func TestRegistrationSettings_RejectsBadBounds(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)

	w := app.request(t, http.MethodPut, "/api/admin/settings/registration", adminToken, gin.H{
		"allow_registration":  true,
		"min_username_length": 10,
		"max_username_length": 3,
		"min_password_length": 8,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditLogs_RecordedAndQueryable(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)

	base := gin.H{
		"allow_registration":         true,
		"allowed_email_domains":      []string{},
		"min_username_length":        3,
		"max_username_length":        32,
		"min_password_length":        9,
		"password_require_uppercase": false,
		"password_require_lowercase": false,
		"password_require_numbers":   false,
		"password_require_special":   false,
		"require_invite_code":        false,
	}
	w := app.request(t, http.MethodPut, "/api/admin/settings/registration", adminToken, base)
	require.Equal(t, http.StatusOK, w.Code)
	base["min_password_length"] = 10
	w = app.request(t, http.MethodPut, "/api/admin/settings/registration", adminToken, base)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodGet, "/api/admin/settings/audit-logs", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AuditLogs []struct {
			ConfigKey  string  `json:"config_key"`
			OldValue   *string `json:"old_value"`
			NewValue   *string `json:"new_value"`
			ChangedBy  int64   `json:"changed_by"`
			ChangeType string  `json:"change_type"`
		} `json:"audit_logs"`
	}
	app.decode(t, w, &resp)
	require.Len(t, resp.AuditLogs, 2)
	assert.Equal(t, "registration_config", resp.AuditLogs[0].ConfigKey)
	require.NotNil(t, resp.AuditLogs[0].NewValue)
	assert.Contains(t, *resp.AuditLogs[0].NewValue, `"min_password_length":10`)

	// limit and config_key query params
	w = app.request(t, http.MethodGet,
		"/api/admin/settings/audit-logs?limit=1&config_key=registration_config", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	app.decode(t, w, &resp)
	assert.Len(t, resp.AuditLogs, 1)

	w = app.request(t, http.MethodGet,
		"/api/admin/settings/audit-logs?limit=bogus", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInviteAdmin_CreateListRevoke(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)

	w := app.request(t, http.MethodPost, "/api/admin/invites", adminToken, gin.H{
		"max_uses": 2, "expires_in_hours": 24,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Code      string  `json:"code"`
		MaxUses   int64   `json:"max_uses"`
		ExpiresAt *string `json:"expires_at"`
	}
	app.decode(t, w, &created)
	assert.Regexp(t, `^INV-[A-HJ-NP-Z2-9]{12}$`, created.Code)
	assert.Equal(t, int64(2), created.MaxUses)
	assert.NotNil(t, created.ExpiresAt)

	w = app.request(t, http.MethodGet, "/api/admin/invites", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.Code)

	w = app.request(t, http.MethodGet, "/api/admin/invites/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_count":1`)

	w = app.request(t, http.MethodDelete, "/api/admin/invites/"+created.Code, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodDelete, "/api/admin/invites/"+created.Code, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"NotFound"`)
}
