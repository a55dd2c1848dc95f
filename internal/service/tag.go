package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"strings"
)

// ParseTagInput splits a comma separated tag line into clean, deduplicated
// lowercase names.
func ParseTagInput(input string) []string {
	seen := map[string]bool{}
	var names []string
	for _, part := range strings.Split(input, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// GetOrCreateTags resolves tag names to rows, creating any that do not exist
// yet. A create that loses a race on the unique name index falls back to a
// second lookup.
func GetOrCreateTags(names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		var tag model.Tag
		err := repo.Db.Where("name = ?", name).First(&tag).Error
		if err == nil {
			tags = append(tags, tag)
			continue
		}
		if !isNotFound(err) {
			return nil, err
		}
		tag = model.Tag{Name: name}
		if err := repo.Db.Create(&tag).Error; err != nil {
			if !isDuplicateErr(err) {
				return nil, err
			}
			if err := repo.Db.Where("name = ?", name).First(&tag).Error; err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ListTags returns all tags ordered by name.
func ListTags() ([]model.Tag, error) {
	var tags []model.Tag
	err := repo.Db.Order("name").Find(&tags).Error
	return tags, err
}
