package model

import "time"

type Category struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	NameEn string `gorm:"column:name_en;size:255;not null" json:"name_en"`
	NameAr string `gorm:"column:name_ar;size:255;not null" json:"name_ar"`

	// A category with NULL parent is a root.
	ParentID *uint64   `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Parent   *Category `gorm:"foreignKey:ParentID;references:ID" json:"-"`

	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Category) TableName() string {
	return "categories"
}

// Name returns the localized category name.
func (c Category) Name(lang string) string {
	if lang == "ar" && c.NameAr != "" {
		return c.NameAr
	}
	return c.NameEn
}
