package store

import (
	"errors"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"gorm.io/gorm"
)

// CreateInviteCode persists a new invite code. A textual collision with an
// existing code surfaces ErrConflict so the caller can retry with a fresh
// code.
func (s *Store) CreateInviteCode(invite *models.InviteCode) error {
	if err := s.db.Create(invite).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// ListInviteCodes returns every invite code, newest first.
func (s *Store) ListInviteCodes() ([]models.InviteCode, error) {
	var codes []models.InviteCode
	if err := s.db.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// FindInviteCode looks a code up by its textual value.
func (s *Store) FindInviteCode(code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	if err := s.db.Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, translateErr(err)
	}
	return &invite, nil
}

// RevokeInviteCode deletes the code. Subsequent verification and
// consumption both report not_found.
func (s *Store) RevokeInviteCode(code string) error {
	res := s.db.Where("code = ?", code).Delete(&models.InviteCode{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// VerifyAndUseInviteCode atomically increments used_count iff the code
// exists, has not expired, and has uses left. Exactly one of N concurrent
// consumers of the last use wins.
func (s *Store) VerifyAndUseInviteCode(code string, userID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return consumeInviteCode(tx, code, userID)
	})
}

// consumeInviteCode is the conditional UPDATE at the heart of invite-use
// accounting. The WHERE clause re-checks every precondition so the
// affected-row count is the arbiter under concurrency; a zero count is
// then diagnosed with a plain read to report the precise failure kind.
func consumeInviteCode(tx *gorm.DB, code string, userID int64) error {
	now := time.Now()
	res := tx.Model(&models.InviteCode{}).
		Where("code = ? AND used_count < max_uses AND (expires_at IS NULL OR expires_at > ?)", code, now).
		Updates(map[string]any{
			"used_count": gorm.Expr("used_count + 1"),
			"used_by":    userID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var invite models.InviteCode
	if err := tx.Where("code = ?", code).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}
	if invite.IsExpired() {
		return ErrInviteExpired
	}
	return ErrInviteUsedUp
}
