package models

import "time"

// ConfigAuditLog records one policy mutation: which aggregate key changed,
// the JSON pre- and post-images, and who changed it. Rows are immutable.
type ConfigAuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ConfigKey  string    `gorm:"index;not null"`
	OldValue   *string   `gorm:"type:text"`
	NewValue   *string   `gorm:"type:text"`
	ChangedBy  int64     `gorm:"not null"`
	ChangeType string    `gorm:"not null;default:'update'"`
	ChangedAt  time.Time `gorm:"index;not null"`
}

func (ConfigAuditLog) TableName() string {
	return "config_audit_logs"
}
