package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Setting keys read on decision paths. Values are always read fresh so an
// admin change applies on the very next gated action.
const (
	SettingAllowPublicUpload   = "allow_public_upload"
	SettingRequireSubscription = "require_subscription"
	SettingPasswordProtection  = "password_protection"
	SettingMaxFileSize         = "max_file_size"
	SettingMaxPasswordAttempts = "max_password_attempts"
	SettingDefaultLanguage     = "default_language"
	SettingBackupFrequency     = "backup_frequency"
)

// SeedDefaultSettings inserts the default settings rows once.
func SeedDefaultSettings() error {
	var count int64
	if err := repo.Db.Model(&model.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := []model.Setting{
		{Key: SettingAllowPublicUpload, Value: "true", Description: "Allow non-admin users to upload files"},
		{Key: SettingRequireSubscription, Value: "true", Description: "Require users to subscribe to channels"},
		{Key: SettingPasswordProtection, Value: "true", Description: "Offer password protection for files"},
		{Key: SettingMaxFileSize, Value: "50", Description: "Maximum file size in MB"},
		{Key: SettingMaxPasswordAttempts, Value: "5", Description: "Password attempts allowed per redemption"},
		{Key: SettingDefaultLanguage, Value: "en", Description: "Default language for new users"},
		{Key: SettingBackupFrequency, Value: "24", Description: "Backup frequency in hours"},
	}
	return repo.Db.Create(&defaults).Error
}

// GetSetting reads a setting value, falling back to def when absent.
func GetSetting(key, def string) string {
	var setting model.Setting
	err := repo.Db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return def
	}
	return setting.Value
}

// GetSettingInt reads a numeric setting value.
func GetSettingInt(key string, def int) int {
	raw := strings.TrimSpace(GetSetting(key, ""))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

// GetSettingBool reads a boolean setting value.
func GetSettingBool(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(GetSetting(key, "")))
	switch raw {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// ListSettings returns all settings rows.
func ListSettings() ([]model.Setting, error) {
	var settings []model.Setting
	if err := repo.Db.Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSetting changes an existing setting value.
func UpdateSetting(key, value string) error {
	result := repo.Db.Model(&model.Setting{}).Where("key = ?", key).Update("value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("setting not found")
	}
	return nil
}

// MaxFileSizeBytes resolves the configured upload ceiling.
func MaxFileSizeBytes() int64 {
	return int64(GetSettingInt(SettingMaxFileSize, 50)) * 1024 * 1024
}

// isNotFound reports whether err is a record-not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateErr reports whether err came from a unique-constraint violation.
// Matched by message so it covers both the sqlite and mysql drivers.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "constraint failed")
}
