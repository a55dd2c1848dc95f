package model

import "time"

// FileDownload tallies downloads per (file, user); it is what distinguishes
// unique downloaders from the raw download_count on File.
type FileDownload struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	FileID uint64 `gorm:"column:file_id;not null;uniqueIndex:uk_file_user,priority:1" json:"file_id"`
	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_file_user,priority:2" json:"user_id"`

	DownloadCount int64 `gorm:"column:download_count;not null;default:1" json:"download_count"`

	FirstDownload time.Time `gorm:"column:first_download" json:"first_download"`
	LastDownload  time.Time `gorm:"column:last_download" json:"last_download"`
}

// TableName returns the database table name.
func (FileDownload) TableName() string {
	return "file_download_stats"
}
