package model

import "time"

type Format struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Name          string `gorm:"column:name;size:255;not null" json:"name"`
	DescriptionEn string `gorm:"column:description_en;size:255" json:"description_en"`
	DescriptionAr string `gorm:"column:description_ar;size:255" json:"description_ar"`

	CategoryID *uint64   `gorm:"column:category_id;index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;references:ID" json:"-"`

	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Format) TableName() string {
	return "formats"
}

// Description returns the localized format description.
func (f Format) Description(lang string) string {
	if lang == "ar" && f.DescriptionAr != "" {
		return f.DescriptionAr
	}
	return f.DescriptionEn
}
