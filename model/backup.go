package model

import "time"

type Backup struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Filename string `gorm:"column:filename;size:255;not null" json:"filename"`
	Size     int64  `gorm:"column:size;not null" json:"size"`
	IsAuto   bool   `gorm:"column:is_auto;not null;default:false" json:"is_auto"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Backup) TableName() string {
	return "backups"
}
