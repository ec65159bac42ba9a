package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-ferrusgate/ferrusgate/internal/models"

	"gorm.io/gorm"
)

// The aggregate key recorded in the config audit log for registration
// policy changes.
const registrationConfigKey = "registration_config"

// registrationSettings names the ten keys behind the registration policy
// with their seed values.
var registrationSettings = []models.AppSetting{
	{Key: "allow_registration", ValueType: models.SettingTypeBool, ValueBool: boolPtr(true), Description: "Whether new user registration is allowed"},
	{Key: "allowed_email_domains", ValueType: models.SettingTypeString, ValueString: strPtr(""), Description: "Comma-separated email domain allowlist, empty means unrestricted"},
	{Key: "min_username_length", ValueType: models.SettingTypeInt, ValueInt: intPtr(3), Description: "Minimum username length"},
	{Key: "max_username_length", ValueType: models.SettingTypeInt, ValueInt: intPtr(32), Description: "Maximum username length"},
	{Key: "min_password_length", ValueType: models.SettingTypeInt, ValueInt: intPtr(8), Description: "Minimum password length"},
	{Key: "password_require_uppercase", ValueType: models.SettingTypeBool, ValueBool: boolPtr(false), Description: "Whether passwords need an uppercase letter"},
	{Key: "password_require_lowercase", ValueType: models.SettingTypeBool, ValueBool: boolPtr(false), Description: "Whether passwords need a lowercase letter"},
	{Key: "password_require_numbers", ValueType: models.SettingTypeBool, ValueBool: boolPtr(false), Description: "Whether passwords need a digit"},
	{Key: "password_require_special", ValueType: models.SettingTypeBool, ValueBool: boolPtr(false), Description: "Whether passwords need a special character"},
	{Key: "require_invite_code", ValueType: models.SettingTypeBool, ValueBool: boolPtr(false), Description: "Whether registration requires an invite code"},
}

func boolPtr(v bool) *bool    { return &v }
func intPtr(v int64) *int64   { return &v }
func strPtr(v string) *string { return &v }

func (s *Store) seedSettings() error {
	for _, setting := range registrationSettings {
		var count int64
		if err := s.db.Model(&models.AppSetting{}).
			Where("key = ?", setting.Key).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		row := setting
		row.UpdatedAt = time.Now()
		if err := s.db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetSetting returns one settings row, or ErrNotFound.
func (s *Store) GetSetting(key string) (*models.AppSetting, error) {
	var setting models.AppSetting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, translateErr(err)
	}
	return &setting, nil
}

// SetSetting upserts one settings row.
func (s *Store) SetSetting(
	key, valueType string,
	valueString *string,
	valueInt *int64,
	valueBool *bool,
	updatedBy *int64,
) error {
	return setSetting(s.db, key, valueType, valueString, valueInt, valueBool, updatedBy)
}

func setSetting(
	tx *gorm.DB,
	key, valueType string,
	valueString *string,
	valueInt *int64,
	valueBool *bool,
	updatedBy *int64,
) error {
	updates := map[string]any{
		"value_type":   valueType,
		"value_string": valueString,
		"value_int":    valueInt,
		"value_bool":   valueBool,
		"updated_at":   time.Now(),
		"updated_by":   updatedBy,
	}

	res := tx.Model(&models.AppSetting{}).Where("key = ?", key).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	setting := models.AppSetting{
		Key:         key,
		ValueType:   valueType,
		ValueString: valueString,
		ValueInt:    valueInt,
		ValueBool:   valueBool,
		UpdatedAt:   time.Now(),
		UpdatedBy:   updatedBy,
	}
	return tx.Create(&setting).Error
}

// GetRegistrationConfig aggregates the ten policy keys into one value.
// Missing rows resolve to the documented defaults.
func (s *Store) GetRegistrationConfig() (models.RegistrationConfig, error) {
	cfg := models.DefaultRegistrationConfig()

	var settings []models.AppSetting
	keys := make([]string, len(registrationSettings))
	for i, r := range registrationSettings {
		keys[i] = r.Key
	}
	if err := s.db.Where("key IN ?", keys).Find(&settings).Error; err != nil {
		return cfg, err
	}

	for _, setting := range settings {
		applySetting(&cfg, setting)
	}
	return cfg, nil
}

func applySetting(cfg *models.RegistrationConfig, setting models.AppSetting) {
	switch setting.Key {
	case "allow_registration":
		if setting.ValueBool != nil {
			cfg.AllowRegistration = *setting.ValueBool
		}
	case "allowed_email_domains":
		if setting.ValueString != nil {
			cfg.AllowedEmailDomains = splitDomains(*setting.ValueString)
		}
	case "min_username_length":
		if setting.ValueInt != nil {
			cfg.MinUsernameLength = *setting.ValueInt
		}
	case "max_username_length":
		if setting.ValueInt != nil {
			cfg.MaxUsernameLength = *setting.ValueInt
		}
	case "min_password_length":
		if setting.ValueInt != nil {
			cfg.MinPasswordLength = *setting.ValueInt
		}
	case "password_require_uppercase":
		if setting.ValueBool != nil {
			cfg.PasswordRequireUppercase = *setting.ValueBool
		}
	case "password_require_lowercase":
		if setting.ValueBool != nil {
			cfg.PasswordRequireLowercase = *setting.ValueBool
		}
	case "password_require_numbers":
		if setting.ValueBool != nil {
			cfg.PasswordRequireNumbers = *setting.ValueBool
		}
	case "password_require_special":
		if setting.ValueBool != nil {
			cfg.PasswordRequireSpecial = *setting.ValueBool
		}
	case "require_invite_code":
		if setting.ValueBool != nil {
			cfg.RequireInviteCode = *setting.ValueBool
		}
	}
}

// splitDomains parses the stored comma-separated form, trimming whitespace
// and dropping empty elements. Empty string means empty list.
func splitDomains(stored string) []string {
	out := []string{}
	for _, part := range strings.Split(stored, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// UpdateRegistrationConfig writes all ten keys and one audit record under
// a single transaction, so a concurrent read sees either the entire
// pre-image or the entire post-image.
func (s *Store) UpdateRegistrationConfig(cfg models.RegistrationConfig, updatedBy int64) error {
	oldCfg, err := s.GetRegistrationConfig()
	if err != nil {
		return err
	}

	domains := strings.Join(cfg.AllowedEmailDomains, ",")

	return s.db.Transaction(func(tx *gorm.DB) error {
		actor := &updatedBy
		writes := []struct {
			key string
			typ string
			vs  *string
			vi  *int64
			vb  *bool
		}{
			{"allow_registration", models.SettingTypeBool, nil, nil, &cfg.AllowRegistration},
			{"allowed_email_domains", models.SettingTypeString, &domains, nil, nil},
			{"min_username_length", models.SettingTypeInt, nil, &cfg.MinUsernameLength, nil},
			{"max_username_length", models.SettingTypeInt, nil, &cfg.MaxUsernameLength, nil},
			{"min_password_length", models.SettingTypeInt, nil, &cfg.MinPasswordLength, nil},
			{"password_require_uppercase", models.SettingTypeBool, nil, nil, &cfg.PasswordRequireUppercase},
			{"password_require_lowercase", models.SettingTypeBool, nil, nil, &cfg.PasswordRequireLowercase},
			{"password_require_numbers", models.SettingTypeBool, nil, nil, &cfg.PasswordRequireNumbers},
			{"password_require_special", models.SettingTypeBool, nil, nil, &cfg.PasswordRequireSpecial},
			{"require_invite_code", models.SettingTypeBool, nil, nil, &cfg.RequireInviteCode},
		}
		for _, w := range writes {
			if err := setSetting(tx, w.key, w.typ, w.vs, w.vi, w.vb, actor); err != nil {
				return err
			}
		}

		oldJSON, _ := json.Marshal(oldCfg)
		newJSON, _ := json.Marshal(cfg)
		return logConfigChange(tx, registrationConfigKey,
			strPtr(string(oldJSON)), strPtr(string(newJSON)), updatedBy, "update")
	})
}
