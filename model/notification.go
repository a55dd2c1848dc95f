package model

import "time"

// Notification is stored first; delivery to the user is attempted
// asynchronously and recorded independently of the row itself.
type Notification struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Message string `gorm:"column:message;type:text;not null" json:"message"`
	Type    string `gorm:"column:notification_type;size:50;not null;default:'general'" json:"notification_type"`

	IsRead bool       `gorm:"column:is_read;not null;default:false" json:"is_read"`
	ReadAt *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`

	Delivered   bool       `gorm:"column:delivered;not null;default:false" json:"delivered"`
	DeliveredAt *time.Time `gorm:"column:delivered_at" json:"delivered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Notification) TableName() string {
	return "notifications"
}
