package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"strings"
)

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// SearchFilesByName finds files whose name contains the query,
// case-insensitively, newest first.
func SearchFilesByName(query string, limit int) ([]model.File, error) {
	var files []model.File
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	err := repo.Db.Preload("Tags").
		Where("LOWER(file_name) LIKE ?", pattern).
		Order("upload_date DESC").Limit(limit).Find(&files).Error
	return files, err
}

// SearchFilesByTag finds files carrying any tag whose name contains the
// query.
func SearchFilesByTag(query string, limit int) ([]model.File, error) {
	var files []model.File
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	err := repo.Db.Preload("Tags").
		Joins("JOIN file_tags ON file_tags.file_id = files.id").
		Joins("JOIN tags ON tags.id = file_tags.tag_id").
		Where("LOWER(tags.name) LIKE ?", pattern).
		Group("files.id").
		Order("upload_date DESC").Limit(limit).Find(&files).Error
	return files, err
}

// FilesByTagID lists files attached to one tag.
func FilesByTagID(tagID uint64, limit int) ([]model.File, error) {
	var files []model.File
	err := repo.Db.Preload("Tags").
		Joins("JOIN file_tags ON file_tags.file_id = files.id").
		Where("file_tags.tag_id = ?", tagID).
		Order("upload_date DESC").Limit(limit).Find(&files).Error
	return files, err
}

// FilesByCategory lists files in a category, newest first.
func FilesByCategory(categoryID uint64, limit int) ([]model.File, error) {
	var files []model.File
	err := repo.Db.Preload("Tags").
		Where("category_id = ?", categoryID).
		Order("upload_date DESC").Limit(limit).Find(&files).Error
	return files, err
}

// FilesByFormat lists files in a format, newest first.
func FilesByFormat(formatID uint64, limit int) ([]model.File, error) {
	var files []model.File
	err := repo.Db.Preload("Tags").
		Where("format_id = ?", formatID).
		Order("upload_date DESC").Limit(limit).Find(&files).Error
	return files, err
}

// FileFilter narrows the REST file listing.
type FileFilter struct {
	OwnerID    *uint64
	CategoryID *uint64
	FormatID   *uint64
	FileType   string
	Query      string
	Offset     int
	Limit      int
}

// ListFiles returns a filtered page of files plus the unpaginated total.
func ListFiles(filter FileFilter) ([]model.File, int64, error) {
	q := repo.Db.Model(&model.File{})
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.FormatID != nil {
		q = q.Where("format_id = ?", *filter.FormatID)
	}
	if filter.FileType != "" {
		q = q.Where("file_type = ?", filter.FileType)
	}
	if filter.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		q = q.Where("LOWER(file_name) LIKE ?", pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var files []model.File
	err := q.Preload("Tags").Order("upload_date DESC").
		Offset(filter.Offset).Limit(limit).Find(&files).Error
	return files, total, err
}
