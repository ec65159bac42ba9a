package models

import (
	"time"
)

// Role values form a closed set; the store default covers new registrations.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'user'"` // "admin" or "user"
	IsActive     bool   `gorm:"not null;default:true"`

	LastLoginAt *time.Time
	LoginCount  int64 `gorm:"not null;default:0"`
	DeletedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDeleted returns true if the account has been soft-deleted
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
