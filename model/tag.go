package model

import "time"

// Tag rows are created lazily by the first file that uses the name.
type Tag struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Name string `gorm:"column:name;size:255;uniqueIndex;not null" json:"name"`

	Files []File `gorm:"many2many:file_tags" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Tag) TableName() string {
	return "tags"
}
