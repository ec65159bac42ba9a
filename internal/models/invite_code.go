package models

import "time"

// InviteCode is an admin-minted registration capability. Consumption is an
// atomic compare-and-increment bounded by MaxUses.
type InviteCode struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Code      string     `gorm:"uniqueIndex;not null"`
	CreatedBy int64      `gorm:"not null"`
	UsedBy    *int64     // last consumer
	MaxUses   int64      `gorm:"not null;default:1"`
	UsedCount int64      `gorm:"not null;default:0"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (i *InviteCode) IsExpired() bool {
	return i.ExpiresAt != nil && !time.Now().Before(*i.ExpiresAt)
}

func (i *InviteCode) IsUsedUp() bool {
	return i.UsedCount >= i.MaxUses
}

// RemainingUses never goes below zero.
func (i *InviteCode) RemainingUses() int64 {
	if i.UsedCount >= i.MaxUses {
		return 0
	}
	return i.MaxUses - i.UsedCount
}
