package model

import "time"

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	// Transport content reference. The relay channel keeps the authoritative
	// copy of the bytes; MessageID is the position used to re-deliver them.
	TelegramFileID string `gorm:"column:telegram_file_id;size:255;not null" json:"-"`
	FileUniqueID   string `gorm:"column:file_unique_id;size:255;not null" json:"-"`
	MessageID      int    `gorm:"column:message_id;not null;default:0" json:"-"`

	// StorageObject is set instead of MessageID for files that entered through
	// the REST API and live in object storage.
	StorageObject string `gorm:"column:storage_object;size:512" json:"-"`

	FileName string `gorm:"column:file_name;size:255;not null" json:"file_name"`
	FileSize int64  `gorm:"column:file_size;not null" json:"file_size"`
	FileType string `gorm:"column:file_type;size:50;not null" json:"file_type"`

	CategoryID *uint64   `gorm:"column:category_id;index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	FormatID   *uint64   `gorm:"column:format_id;index" json:"format_id,omitempty"`
	Format     *Format   `gorm:"foreignKey:FormatID;references:ID" json:"format,omitempty"`

	OwnerID uint64 `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID;references:ID" json:"-"`

	SourceURL *string `gorm:"column:source_url;size:255" json:"source_url,omitempty"`

	// ShareCode is the only identifier ever presented externally for
	// redemption; the numeric ID never leaves the API surface.
	ShareLink string `gorm:"column:share_link;size:255;not null" json:"share_link"`
	ShareCode string `gorm:"column:share_code;size:64;uniqueIndex;not null" json:"share_code"`

	Password    *string `gorm:"column:password;size:255" json:"-"`
	IsEncrypted bool    `gorm:"column:is_encrypted;not null;default:false" json:"is_encrypted"`

	UploadDate time.Time  `gorm:"column:upload_date;not null" json:"upload_date"`
	ExpiryDate *time.Time `gorm:"column:expiry_date" json:"expiry_date,omitempty"`

	DownloadCount int64 `gorm:"column:download_count;not null;default:0" json:"download_count"`
	ViewCount     int64 `gorm:"column:view_count;not null;default:0" json:"view_count"`

	RatingSum   int64 `gorm:"column:rating_sum;not null;default:0" json:"rating_sum"`
	RatingCount int64 `gorm:"column:rating_count;not null;default:0" json:"rating_count"`

	Tags []Tag `gorm:"many2many:file_tags" json:"tags,omitempty"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}

// Expired reports whether the file's expiry has passed.
func (f *File) Expired(now time.Time) bool {
	return f.ExpiryDate != nil && now.After(*f.ExpiryDate)
}
