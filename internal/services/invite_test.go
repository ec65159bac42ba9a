package services

import (
	"strings"
	"testing"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateInviteCode()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(code, "INV-"))
		body := strings.TrimPrefix(code, "INV-")
		require.Len(t, body, 12)
		for _, r := range body {
			assert.Contains(t, inviteAlphabet, string(r))
		}
		assert.False(t, seen[code], "duplicate code generated")
		seen[code] = true
	}
}

func TestInviteCreate_Defaults(t *testing.T) {
	s := setupTestStore(t)
	admin := seedUser(t, s, models.RoleAdmin)
	svc := NewInviteService(s)

	// maxUses < 1 defaults to single use; no expiry when hours <= 0
	invite, err := svc.Create(admin.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), invite.MaxUses)
	assert.Nil(t, invite.ExpiresAt)
	assert.Equal(t, admin.ID, invite.CreatedBy)

	withExpiry, err := svc.Create(admin.ID, 5, 2)
	require.NoError(t, err)
	require.NotNil(t, withExpiry.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *withExpiry.ExpiresAt, time.Minute)
}

func TestInviteVerify_AllOutcomes(t *testing.T) {
	s := setupTestStore(t)
	admin := seedUser(t, s, models.RoleAdmin)
	svc := NewInviteService(s)

	// not_found
	v, err := svc.Verify("INV-NOSUCHCODE01")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, "not_found", v.Reason)
	assert.Nil(t, v.RemainingUses)

	// valid with remaining uses
	invite, err := svc.Create(admin.ID, 3, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Consume(invite.Code, admin.ID))

	v, err = svc.Verify(invite.Code)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	require.NotNil(t, v.RemainingUses)
	assert.Equal(t, int64(2), *v.RemainingUses)
	assert.Empty(t, v.Reason)

	// expired
	past := time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateInviteCode(&models.InviteCode{
		Code: "INV-YESTERDAY001", CreatedBy: admin.ID, MaxUses: 1, ExpiresAt: &past,
	}))
	v, err = svc.Verify("INV-YESTERDAY001")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, "expired", v.Reason)

	// used_up
	require.NoError(t, s.CreateInviteCode(&models.InviteCode{
		Code: "INV-DRAINEDOUT01", CreatedBy: admin.ID, MaxUses: 1, UsedCount: 1,
	}))
	v, err = svc.Verify("INV-DRAINEDOUT01")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, "used_up", v.Reason)

	// Verification never consumes
	reloaded, err := s.FindInviteCode(invite.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reloaded.UsedCount)
}

func TestInviteRevoke(t *testing.T) {
	s := setupTestStore(t)
	admin := seedUser(t, s, models.RoleAdmin)
	svc := NewInviteService(s)

	invite, err := svc.Create(admin.ID, 1, 0)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(invite.Code))

	v, err := svc.Verify(invite.Code)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, "not_found", v.Reason)

	assert.ErrorIs(t, svc.Consume(invite.Code, admin.ID), store.ErrInviteNotFound)
}

func TestInviteStats(t *testing.T) {
	s := setupTestStore(t)
	admin := seedUser(t, s, models.RoleAdmin)
	svc := NewInviteService(s)

	// One active (1 of 2 used), one fully used, one expired
	active, err := svc.Create(admin.ID, 2, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Consume(active.Code, admin.ID))

	drained, err := svc.Create(admin.ID, 1, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Consume(drained.Code, admin.ID))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateInviteCode(&models.InviteCode{
		Code: "INV-TOOLATENOW01", CreatedBy: admin.ID, MaxUses: 4, ExpiresAt: &past,
	}))

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalCount)
	assert.Equal(t, int64(1), stats.ActiveCount)
	assert.Equal(t, int64(1), stats.FullyUsedCount)
	assert.Equal(t, int64(1), stats.ExpiredCount)
	assert.Equal(t, int64(2), stats.TotalUses)
	assert.Equal(t, int64(7), stats.TotalCapacity)
	assert.Equal(t, int64(29), stats.UsageRate) // 2/7 rounded
}
