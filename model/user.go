package model

import "time"

type User struct {
	ID uint64 `gorm:"primaryKey"`

	TelegramID int64 `gorm:"column:telegram_id;uniqueIndex;not null" json:"telegram_id"`

	Username  string `gorm:"column:username;type:varchar(255)" json:"username"`
	FirstName string `gorm:"column:first_name;type:varchar(255)" json:"first_name"`
	LastName  string `gorm:"column:last_name;type:varchar(255)" json:"last_name"`

	LanguageCode string `gorm:"column:language_code;type:varchar(10);not null;default:'en'" json:"language_code"`

	IsAdmin     bool `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	IsModerator bool `gorm:"column:is_moderator;not null;default:false" json:"is_moderator"`
	IsBanned    bool `gorm:"column:is_banned;not null;default:false" json:"is_banned"`
	CanUpload   bool `gorm:"column:can_upload;not null;default:true" json:"can_upload"`

	// ReferralCode is immutable after creation.
	ReferralCode string  `gorm:"column:referral_code;size:64;uniqueIndex;not null" json:"referral_code"`
	ReferredBy   *uint64 `gorm:"column:referred_by" json:"referred_by,omitempty"`
	Referrer     *User   `gorm:"foreignKey:ReferredBy;references:ID" json:"-"`

	APIKey string `gorm:"column:api_key;size:255;index" json:"-"`

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `gorm:"column:last_activity" json:"last_activity"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}
