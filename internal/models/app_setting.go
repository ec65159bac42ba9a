package models

import "time"

// Setting value types; exactly one of the value columns is populated per
// row, named by ValueType.
const (
	SettingTypeString = "string"
	SettingTypeInt    = "int"
	SettingTypeBool   = "bool"
)

type AppSetting struct {
	Key         string  `gorm:"primaryKey"`
	ValueType   string  `gorm:"not null"`
	ValueString *string `gorm:"type:text"`
	ValueInt    *int64
	ValueBool   *bool
	Description string `gorm:"type:text"`
	UpdatedAt   time.Time
	UpdatedBy   *int64
}

func (AppSetting) TableName() string {
	return "app_settings"
}
