package models

import "time"

type AccessToken struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Token     string  `gorm:"uniqueIndex;not null"`
	TokenType string  `gorm:"not null;default:'Bearer'"`
	ClientID  *string `gorm:"index"` // nil for local-login tokens
	UserID    int64   `gorm:"not null;index"`
	Scopes    string  `gorm:"not null"` // space-separated
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *AccessToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// RefreshToken back-references its access token; the pair is deleted
// together on revocation.
type RefreshToken struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Token         string `gorm:"uniqueIndex;not null"`
	AccessTokenID int64  `gorm:"not null;index"`
	ExpiresAt     time.Time
	CreatedAt     time.Time
}
