package model

import "time"

type ApiLog struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	UserID *uint64 `gorm:"column:user_id;index" json:"user_id,omitempty"`

	Endpoint   string `gorm:"column:endpoint;size:255;not null" json:"endpoint"`
	Method     string `gorm:"column:method;size:10;not null" json:"method"`
	StatusCode int    `gorm:"column:status_code;not null" json:"status_code"`
	IPAddress  string `gorm:"column:ip_address;size:50" json:"ip_address"`
	UserAgent  string `gorm:"column:user_agent;size:255" json:"user_agent"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ApiLog) TableName() string {
	return "api_logs"
}
