package model

import "time"

// Setting is runtime-tunable configuration; always read fresh, never cached.
type Setting struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Key         string `gorm:"column:key;size:255;uniqueIndex;not null" json:"key"`
	Value       string `gorm:"column:value;size:255" json:"value"`
	Description string `gorm:"column:description;size:255" json:"description"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Setting) TableName() string {
	return "settings"
}
