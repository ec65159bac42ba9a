package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
	"github.com/go-ferrusgate/ferrusgate/internal/util"
)

// inviteAlphabet excludes confusable characters (0/O, 1/I/L).
const (
	inviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength = 12
	invitePrefix     = "INV-"

	// createInviteAttempts bounds retries on the astronomically
	// improbable textual collision.
	createInviteAttempts = 3
)

// InviteService issues, lists, verifies, consumes, and revokes invite
// codes.
type InviteService struct {
	store *store.Store
}

func NewInviteService(s *store.Store) *InviteService {
	return &InviteService{store: s}
}

// generateInviteCode draws 12 codepoints uniformly from the 32-character
// alphabet using a cryptographically strong source.
func generateInviteCode() (string, error) {
	raw, err := util.CryptoRandomBytes(inviteCodeLength)
	if err != nil {
		return "", err
	}
	code := make([]byte, inviteCodeLength)
	for i, b := range raw {
		// 32 divides 256 evenly, so masking is unbiased.
		code[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return invitePrefix + string(code), nil
}

// Create mints a new invite code. maxUses < 1 defaults to single use;
// expiresInHours <= 0 means the code never expires.
func (i *InviteService) Create(createdBy int64, maxUses int64, expiresInHours int64) (*models.InviteCode, error) {
	if maxUses < 1 {
		maxUses = 1
	}

	var expiresAt *time.Time
	if expiresInHours > 0 {
		t := time.Now().Add(time.Duration(expiresInHours) * time.Hour)
		expiresAt = &t
	}

	var lastErr error
	for attempt := 0; attempt < createInviteAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, err
		}

		invite := &models.InviteCode{
			Code:      code,
			CreatedBy: createdBy,
			MaxUses:   maxUses,
			UsedCount: 0,
			ExpiresAt: expiresAt,
		}
		if err := i.store.CreateInviteCode(invite); err != nil {
			if errors.Is(err, store.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		log.Printf("Invite code created: %s by user %d", code, createdBy)
		return invite, nil
	}
	return nil, fmt.Errorf("failed to create invite code after %d attempts: %w",
		createInviteAttempts, lastErr)
}

// List returns all invite codes (administrative, pagination-free).
func (i *InviteService) List() ([]models.InviteCode, error) {
	return i.store.ListInviteCodes()
}

// Verification is the outcome of a non-consuming invite check.
type Verification struct {
	Valid         bool   `json:"valid"`
	RemainingUses *int64 `json:"remaining_uses,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Verify checks a code without consuming it.
func (i *InviteService) Verify(code string) (*Verification, error) {
	invite, err := i.store.FindInviteCode(code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &Verification{Valid: false, Reason: "not_found"}, nil
		}
		return nil, err
	}

	if invite.IsExpired() {
		return &Verification{Valid: false, Reason: "expired"}, nil
	}
	if invite.IsUsedUp() {
		return &Verification{Valid: false, Reason: "used_up"}, nil
	}

	remaining := invite.RemainingUses()
	return &Verification{Valid: true, RemainingUses: &remaining}, nil
}

// Consume atomically uses one charge of the code for the given user.
func (i *InviteService) Consume(code string, userID int64) error {
	return i.store.VerifyAndUseInviteCode(code, userID)
}

// Revoke removes the code; verification afterwards reports not_found.
func (i *InviteService) Revoke(code string) error {
	if err := i.store.RevokeInviteCode(code); err != nil {
		return err
	}
	log.Printf("Invite code revoked: %s", code)
	return nil
}

// Stats summarizes the invite pool for the admin overview.
type Stats struct {
	TotalCount     int64 `json:"total_count"`
	ActiveCount    int64 `json:"active_count"`
	FullyUsedCount int64 `json:"fully_used_count"`
	ExpiredCount   int64 `json:"expired_count"`
	TotalUses      int64 `json:"total_uses"`
	TotalCapacity  int64 `json:"total_capacity"`
	UsageRate      int64 `json:"usage_rate"` // percent
}

// GetStats aggregates counters across all invite codes.
func (i *InviteService) GetStats() (*Stats, error) {
	invites, err := i.store.ListInviteCodes()
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalCount: int64(len(invites))}
	for _, invite := range invites {
		stats.TotalUses += invite.UsedCount
		stats.TotalCapacity += invite.MaxUses

		switch {
		case invite.IsExpired():
			stats.ExpiredCount++
		case invite.IsUsedUp():
			stats.FullyUsedCount++
		default:
			stats.ActiveCount++
		}
	}

	if stats.TotalCapacity > 0 {
		stats.UsageRate = int64(float64(stats.TotalUses)/float64(stats.TotalCapacity)*100 + 0.5)
	}
	return stats, nil
}
