package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"time"
)

// Totals is the dashboard headline block.
type Totals struct {
	Users          int64 `json:"users"`
	Files          int64 `json:"files"`
	Downloads      int64 `json:"downloads"`
	StorageBytes   int64 `json:"storage_bytes"`
	ActiveUsers7d  int64 `json:"active_users_7d"`
	ActiveUsers30d int64 `json:"active_users_30d"`
}

// GetTotals computes the dashboard counters.
func GetTotals() (*Totals, error) {
	var t Totals
	if err := repo.Db.Model(&model.User{}).Count(&t.Users).Error; err != nil {
		return nil, err
	}
	if err := repo.Db.Model(&model.File{}).Count(&t.Files).Error; err != nil {
		return nil, err
	}
	row := repo.Db.Model(&model.File{}).
		Select("COALESCE(SUM(download_count), 0), COALESCE(SUM(file_size), 0)").Row()
	if err := row.Scan(&t.Downloads, &t.StorageBytes); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := repo.Db.Model(&model.User{}).
		Where("last_activity >= ?", now.AddDate(0, 0, -7)).Count(&t.ActiveUsers7d).Error; err != nil {
		return nil, err
	}
	if err := repo.Db.Model(&model.User{}).
		Where("last_activity >= ?", now.AddDate(0, 0, -30)).Count(&t.ActiveUsers30d).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// DayCount is one bucket of a per-day series.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// UserGrowth buckets new registrations per day over the last N days.
func UserGrowth(days int) ([]DayCount, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var out []DayCount
	err := repo.Db.Model(&model.User{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", cutoff).
		Group("DATE(created_at)").Order("day").Scan(&out).Error
	return out, err
}

// UploadsPerDay buckets uploads per day over the last N days.
func UploadsPerDay(days int) ([]DayCount, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var out []DayCount
	err := repo.Db.Model(&model.File{}).
		Select("DATE(upload_date) AS day, COUNT(*) AS count").
		Where("upload_date >= ?", cutoff).
		Group("DATE(upload_date)").Order("day").Scan(&out).Error
	return out, err
}

// TopFiles lists the most downloaded files.
func TopFiles(limit int) ([]model.File, error) {
	var files []model.File
	err := repo.Db.Order("download_count DESC").Limit(limit).Find(&files).Error
	return files, err
}

// UserSummary is the per-user block behind the /stats bot command.
type UserSummary struct {
	Files     int64 `json:"files"`
	Downloads int64 `json:"downloads"`
	Views     int64 `json:"views"`
	Referrals int64 `json:"referrals"`
}

// GetUserSummary aggregates one user's upload footprint.
func GetUserSummary(userID uint64) (*UserSummary, error) {
	var s UserSummary
	if err := repo.Db.Model(&model.File{}).Where("owner_id = ?", userID).
		Count(&s.Files).Error; err != nil {
		return nil, err
	}
	row := repo.Db.Model(&model.File{}).Where("owner_id = ?", userID).
		Select("COALESCE(SUM(download_count), 0), COALESCE(SUM(view_count), 0)").Row()
	if err := row.Scan(&s.Downloads, &s.Views); err != nil {
		return nil, err
	}
	var err error
	s.Referrals, err = CountReferrals(userID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
