package store

import (
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"gorm.io/gorm"
)

// LogConfigChange appends one immutable audit record for a configuration
// mutation.
func (s *Store) LogConfigChange(
	configKey string,
	oldValue, newValue *string,
	changedBy int64,
	changeType string,
) error {
	return logConfigChange(s.db, configKey, oldValue, newValue, changedBy, changeType)
}

func logConfigChange(
	tx *gorm.DB,
	configKey string,
	oldValue, newValue *string,
	changedBy int64,
	changeType string,
) error {
	record := models.ConfigAuditLog{
		ConfigKey:  configKey,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  changedBy,
		ChangeType: changeType,
		ChangedAt:  time.Now(),
	}
	return tx.Create(&record).Error
}

// GetConfigAuditLogs returns change records newest first, optionally
// filtered by config key. limit <= 0 means no limit.
func (s *Store) GetConfigAuditLogs(configKey string, limit int) ([]models.ConfigAuditLog, error) {
	query := s.db.Order("changed_at DESC")
	if configKey != "" {
		query = query.Where("config_key = ?", configKey)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []models.ConfigAuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
