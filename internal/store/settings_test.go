package store

import (
	"testing"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRegistrationConfig_DefaultsWhenUnseeded(t *testing.T) {
	s := setupTestStore(t)

	cfg, err := s.GetRegistrationConfig()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRegistrationConfig(), cfg)
}

func TestGetRegistrationConfig_SeededValues(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Seed("pw"))

	cfg, err := s.GetRegistrationConfig()
	require.NoError(t, err)
	assert.True(t, cfg.AllowRegistration)
	assert.Empty(t, cfg.AllowedEmailDomains)
	assert.Equal(t, int64(3), cfg.MinUsernameLength)
	assert.Equal(t, int64(32), cfg.MaxUsernameLength)
	assert.Equal(t, int64(8), cfg.MinPasswordLength)
	assert.False(t, cfg.RequireInviteCode)
}

func TestUpdateRegistrationConfig_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Seed("pw"))

	updated := models.RegistrationConfig{
		AllowRegistration:        true,
		AllowedEmailDomains:      []string{"example.com", "corp.example.org"},
		MinUsernameLength:        5,
		MaxUsernameLength:        20,
		MinPasswordLength:        12,
		PasswordRequireUppercase: true,
		PasswordRequireLowercase: true,
		PasswordRequireNumbers:   true,
		PasswordRequireSpecial:   false,
		RequireInviteCode:        true,
	}
	require.NoError(t, s.UpdateRegistrationConfig(updated, 1))

	reloaded, err := s.GetRegistrationConfig()
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)

	// Reading twice with no intervening write is stable
	again, err := s.GetRegistrationConfig()
	require.NoError(t, err)
	assert.Equal(t, reloaded, again)
}

func TestUpdateRegistrationConfig_WritesAuditRecord(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Seed("pw"))

	updated := models.DefaultRegistrationConfig()
	updated.MinPasswordLength = 16
	require.NoError(t, s.UpdateRegistrationConfig(updated, 42))

	logs, err := s.GetConfigAuditLogs("", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "registration_config", logs[0].ConfigKey)
	assert.Equal(t, int64(42), logs[0].ChangedBy)
	assert.Equal(t, "update", logs[0].ChangeType)
	require.NotNil(t, logs[0].OldValue)
	require.NotNil(t, logs[0].NewValue)
	assert.Contains(t, *logs[0].OldValue, `"min_password_length":8`)
	assert.Contains(t, *logs[0].NewValue, `"min_password_length":16`)
}

func TestGetConfigAuditLogs_FilterAndLimit(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.LogConfigChange("registration_config", nil, nil, 1, "update"))
	require.NoError(t, s.LogConfigChange("registration_config", nil, nil, 1, "update"))
	require.NoError(t, s.LogConfigChange("cache_policy", nil, nil, 1, "update"))

	all, err := s.GetConfigAuditLogs("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := s.GetConfigAuditLogs("registration_config", 0)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	limited, err := s.GetConfigAuditLogs("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSetSetting_UpsertBothPaths(t *testing.T) {
	s := setupTestStore(t)

	v1 := int64(7)
	require.NoError(t, s.SetSetting("custom_key", models.SettingTypeInt, nil, &v1, nil, nil))

	setting, err := s.GetSetting("custom_key")
	require.NoError(t, err)
	require.NotNil(t, setting.ValueInt)
	assert.Equal(t, int64(7), *setting.ValueInt)

	v2 := int64(9)
	actor := int64(3)
	require.NoError(t, s.SetSetting("custom_key", models.SettingTypeInt, nil, &v2, nil, &actor))

	setting, err = s.GetSetting("custom_key")
	require.NoError(t, err)
	assert.Equal(t, int64(9), *setting.ValueInt)
	require.NotNil(t, setting.UpdatedBy)
	assert.Equal(t, int64(3), *setting.UpdatedBy)
}

func TestGetSetting_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetSetting("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSplitDomains(t *testing.T) {
	assert.Equal(t, []string{}, splitDomains(""))
	assert.Equal(t, []string{"a.com"}, splitDomains("a.com"))
	assert.Equal(t, []string{"a.com", "b.org"}, splitDomains(" a.com , b.org ,, "))
}
