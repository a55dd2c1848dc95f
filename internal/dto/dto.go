// Package dto holds the request and response shapes of the HTTP surfaces.
package dto

import (
	"TeleVault/model"
	"time"
)

// Page wraps a paginated listing.
type Page struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// FileView is the API projection of a file. Redemption identifiers are
// included; transport references and password hashes are not.
type FileView struct {
	ID            uint64     `json:"id"`
	FileName      string     `json:"file_name"`
	FileSize      int64      `json:"file_size"`
	FileType      string     `json:"file_type"`
	CategoryID    *uint64    `json:"category_id,omitempty"`
	FormatID      *uint64    `json:"format_id,omitempty"`
	OwnerID       uint64     `json:"owner_id"`
	SourceURL     *string    `json:"source_url,omitempty"`
	ShareLink     string     `json:"share_link"`
	ShareCode     string     `json:"share_code"`
	HasPassword   bool       `json:"has_password"`
	IsEncrypted   bool       `json:"is_encrypted"`
	UploadDate    time.Time  `json:"upload_date"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	DownloadCount int64      `json:"download_count"`
	ViewCount     int64      `json:"view_count"`
	Tags          []string   `json:"tags"`
}

// NewFileView projects a file row.
func NewFileView(f *model.File) FileView {
	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		tags = append(tags, t.Name)
	}
	return FileView{
		ID:            f.ID,
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		FileType:      f.FileType,
		CategoryID:    f.CategoryID,
		FormatID:      f.FormatID,
		OwnerID:       f.OwnerID,
		SourceURL:     f.SourceURL,
		ShareLink:     f.ShareLink,
		ShareCode:     f.ShareCode,
		HasPassword:   f.Password != nil && *f.Password != "",
		IsEncrypted:   f.IsEncrypted,
		UploadDate:    f.UploadDate,
		ExpiryDate:    f.ExpiryDate,
		DownloadCount: f.DownloadCount,
		ViewCount:     f.ViewCount,
		Tags:          tags,
	}
}

// NewFileViews projects a slice of file rows.
func NewFileViews(files []model.File) []FileView {
	out := make([]FileView, 0, len(files))
	for i := range files {
		out = append(out, NewFileView(&files[i]))
	}
	return out
}

// LoginRequest is the console login body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the console session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// RatingRequest rates a file.
type RatingRequest struct {
	Stars int `json:"stars" binding:"required"`
}

// SettingUpdate is the console settings change body.
type SettingUpdate struct {
	Value string `json:"value" binding:"required"`
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	NameEn   string  `json:"name_en"`
	NameAr   string  `json:"name_ar"`
	ParentID *uint64 `json:"parent_id"`
	IsActive *bool   `json:"is_active"`
}

// FormatRequest creates or updates a format.
type FormatRequest struct {
	Name          string  `json:"name"`
	DescriptionEn string  `json:"description_en"`
	DescriptionAr string  `json:"description_ar"`
	CategoryID    *uint64 `json:"category_id"`
	IsActive      *bool   `json:"is_active"`
}

// ChannelRequest registers a subscription channel.
type ChannelRequest struct {
	ChannelID   int64  `json:"channel_id" binding:"required"`
	ChannelName string `json:"channel_name" binding:"required"`
	ChannelLink string `json:"channel_link" binding:"required"`
	IsRequired  *bool  `json:"is_required"`
}

// BroadcastRequest queues an announcement.
type BroadcastRequest struct {
	Message    string `json:"message" binding:"required"`
	ActiveDays int    `json:"active_days"`
}
