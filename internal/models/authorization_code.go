package models

import "time"

// AuthorizationCode stores OAuth 2.0 authorization codes (RFC 6749).
// Codes are short-lived and single-use; consumed or expired codes are
// tombstones, never resurrected.
type AuthorizationCode struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Code        string `gorm:"uniqueIndex;not null"`
	ClientID    string `gorm:"not null;index"`
	UserID      int64  `gorm:"not null;index"`
	RedirectURI string `gorm:"not null"` // exact URI shown at /authorize
	Scopes      string `gorm:"not null"` // space-separated
	ExpiresAt   time.Time
	Used        bool `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

func (a *AuthorizationCode) IsExpired() bool {
	return !time.Now().Before(a.ExpiresAt)
}

func (AuthorizationCode) TableName() string {
	return "authorization_codes"
}
