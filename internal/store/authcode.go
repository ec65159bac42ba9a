package store

import (
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"gorm.io/gorm"
)

// SaveAuthCode persists a freshly minted authorization code.
func (s *Store) SaveAuthCode(code *models.AuthorizationCode) error {
	if err := s.db.Create(code).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

// ConsumeAuthCode atomically checks and marks an authorization code as
// used. The conditional UPDATE's affected-row count decides the winner:
// two concurrent consumers of the same code observe exactly one success.
// Missing, expired, and already-used codes all return ErrAuthCodeConsumed
// without mutating anything.
func (s *Store) ConsumeAuthCode(code string) (*models.AuthorizationCode, error) {
	var record models.AuthorizationCode

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AuthorizationCode{}).
			Where("code = ? AND used = ? AND expires_at > ?", code, false, time.Now()).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAuthCodeConsumed
		}
		return tx.Where("code = ?", code).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ConsumeAuthCodePrechecked is ConsumeAuthCode with the exchange-time
// bindings folded into the conditional UPDATE: the presented client and
// redirect URI must equal the stored ones or nothing is mutated. Callers
// cannot distinguish which precondition failed.
func (s *Store) ConsumeAuthCodePrechecked(code, clientID, redirectURI string) (*models.AuthorizationCode, error) {
	var record models.AuthorizationCode

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AuthorizationCode{}).
			Where("code = ? AND client_id = ? AND redirect_uri = ? AND used = ? AND expires_at > ?",
				code, clientID, redirectURI, false, time.Now()).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAuthCodeConsumed
		}
		return tx.Where("code = ?", code).First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteExpiredAuthCodes removes tombstones past their expiry.
func (s *Store) DeleteExpiredAuthCodes() error {
	return s.db.Where("expires_at < ?", time.Now()).
		Delete(&models.AuthorizationCode{}).Error
}
