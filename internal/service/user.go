package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"TeleVault/utils"
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserIdentity carries what the transport knows about the acting user.
type UserIdentity struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// GetOrCreateUser upserts a user keyed by telegram id. New users get an
// immutable referral code; returning users have their name fields and
// last-activity refreshed.
func GetOrCreateUser(id UserIdentity) (*model.User, error) {
	var user model.User
	err := repo.Db.Where("telegram_id = ?", id.TelegramID).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"username":      id.Username,
			"first_name":    id.FirstName,
			"last_name":     id.LastName,
			"last_activity": time.Now(),
		}
		if err := repo.Db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lang := id.LanguageCode
	if lang != "en" && lang != "ar" {
		lang = GetSetting(SettingDefaultLanguage, "en")
	}
	user = model.User{
		TelegramID:   id.TelegramID,
		Username:     id.Username,
		FirstName:    id.FirstName,
		LastName:     id.LastName,
		LanguageCode: lang,
		CanUpload:    true,
		ReferralCode: utils.GenReferralCode(),
		LastActivity: time.Now(),
	}
	if err := repo.Db.Create(&user).Error; err != nil {
		// concurrent first interaction from the same user
		if isDuplicateErr(err) {
			if ferr := repo.Db.Where("telegram_id = ?", id.TelegramID).First(&user).Error; ferr == nil {
				return &user, nil
			}
		}
		return nil, err
	}
	return &user, nil
}

// EnsureAdmin promotes (or creates) an admin user by telegram id. Called at
// startup for every configured admin id.
func EnsureAdmin(telegramID int64) error {
	var user model.User
	err := repo.Db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		return repo.Db.Model(&user).Update("is_admin", true).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	user = model.User{
		TelegramID:   telegramID,
		IsAdmin:      true,
		CanUpload:    true,
		LanguageCode: GetSetting(SettingDefaultLanguage, "en"),
		ReferralCode: utils.GenReferralCode(),
		LastActivity: time.Now(),
	}
	return repo.Db.Create(&user).Error
}

// GetUserByTelegramID finds a user by external id.
func GetUserByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	if err := repo.Db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID finds a user by its internal id.
func GetUserByID(id uint64) (*model.User, error) {
	var user model.User
	if err := repo.Db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByAPIKey resolves a REST credential to its user.
func FindUserByAPIKey(apiKey string) (*model.User, error) {
	if apiKey == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user model.User
	if err := repo.Db.Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IssueAPIKey generates and stores a fresh REST credential for a user.
func IssueAPIKey(userID uint64) (string, error) {
	key := utils.GenAPIKey()
	if err := repo.Db.Model(&model.User{}).Where("id = ?", userID).Update("api_key", key).Error; err != nil {
		return "", err
	}
	return key, nil
}

// SetLanguage updates a user's preferred language.
func SetLanguage(userID uint64, lang string) error {
	if lang != "en" && lang != "ar" {
		return errors.New("unsupported language")
	}
	return repo.Db.Model(&model.User{}).Where("id = ?", userID).Update("language_code", lang).Error
}

// RegisterReferral links a newly created user to its referrer. Self-referral
// and re-linking are ignored.
func RegisterReferral(user *model.User, referralCode string) error {
	if referralCode == "" || user.ReferredBy != nil || user.ReferralCode == referralCode {
		return nil
	}
	var referrer model.User
	err := repo.Db.Where("referral_code = ?", referralCode).First(&referrer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if referrer.ID == user.ID {
		return nil
	}
	user.ReferredBy = &referrer.ID
	return repo.Db.Model(user).Update("referred_by", referrer.ID).Error
}

// CountReferrals returns how many users joined through a user's link.
func CountReferrals(userID uint64) (int64, error) {
	var count int64
	err := repo.Db.Model(&model.User{}).Where("referred_by = ?", userID).Count(&count).Error
	return count, err
}

// UserFlags is the mutable flag set an admin can change.
type UserFlags struct {
	IsAdmin     *bool `json:"is_admin"`
	IsModerator *bool `json:"is_moderator"`
	IsBanned    *bool `json:"is_banned"`
	CanUpload   *bool `json:"can_upload"`
}

// UpdateUserFlags applies admin-set flags to a user.
func UpdateUserFlags(userID uint64, flags UserFlags) error {
	updates := map[string]interface{}{}
	if flags.IsAdmin != nil {
		updates["is_admin"] = *flags.IsAdmin
	}
	if flags.IsModerator != nil {
		updates["is_moderator"] = *flags.IsModerator
	}
	if flags.IsBanned != nil {
		updates["is_banned"] = *flags.IsBanned
	}
	if flags.CanUpload != nil {
		updates["can_upload"] = *flags.CanUpload
	}
	if len(updates) == 0 {
		return nil
	}
	result := repo.Db.Model(&model.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListUsers returns a page of users, newest first.
func ListUsers(offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	if err := repo.Db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := repo.Db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ActiveUsers lists users active within the last N days.
func ActiveUsers(days int) ([]model.User, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var users []model.User
	if err := repo.Db.Where("last_activity >= ?", cutoff).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// AllUsers lists every known user.
func AllUsers() ([]model.User, error) {
	var users []model.User
	if err := repo.Db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
