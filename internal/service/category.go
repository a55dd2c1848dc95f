package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"

	"gorm.io/gorm"
)

// RootCategories lists the active top-level categories.
func RootCategories() ([]model.Category, error) {
	var categories []model.Category
	err := repo.Db.Where("parent_id IS NULL AND is_active = ?", true).
		Order("id").Find(&categories).Error
	return categories, err
}

// Subcategories lists the active children of a category.
func Subcategories(parentID uint64) ([]model.Category, error) {
	var categories []model.Category
	err := repo.Db.Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("id").Find(&categories).Error
	return categories, err
}

// AllCategories lists every category, active or not.
func AllCategories() ([]model.Category, error) {
	var categories []model.Category
	err := repo.Db.Order("id").Find(&categories).Error
	return categories, err
}

// GetCategory loads one category.
func GetCategory(id uint64) (*model.Category, error) {
	var category model.Category
	if err := repo.Db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory adds a category, optionally under a parent.
func CreateCategory(nameEn, nameAr string, parentID *uint64) (*model.Category, error) {
	category := model.Category{
		NameEn:   nameEn,
		NameAr:   nameAr,
		ParentID: parentID,
		IsActive: true,
	}
	if err := repo.Db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory changes a category's names and active flag.
func UpdateCategory(id uint64, nameEn, nameAr string, isActive *bool) error {
	updates := map[string]interface{}{}
	if nameEn != "" {
		updates["name_en"] = nameEn
	}
	if nameAr != "" {
		updates["name_ar"] = nameAr
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) == 0 {
		return nil
	}
	result := repo.Db.Model(&model.Category{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCategory removes a category. Files keep their rows; their category
// reference is cleared, as are child categories' parent links.
func DeleteCategory(id uint64) error {
	return repo.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.File{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Category{}).Where("parent_id = ?", id).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Format{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Category{}, id).Error
	})
}

// FormatsForCategory lists active formats scoped to a category plus the
// unscoped ones.
func FormatsForCategory(categoryID uint64) ([]model.Format, error) {
	var formats []model.Format
	err := repo.Db.Where("is_active = ? AND (category_id = ? OR category_id IS NULL)", true, categoryID).
		Order("id").Find(&formats).Error
	return formats, err
}

// AllFormats lists every format.
func AllFormats() ([]model.Format, error) {
	var formats []model.Format
	err := repo.Db.Order("id").Find(&formats).Error
	return formats, err
}

// GetFormat loads one format.
func GetFormat(id uint64) (*model.Format, error) {
	var format model.Format
	if err := repo.Db.Where("id = ?", id).First(&format).Error; err != nil {
		return nil, err
	}
	return &format, nil
}

// CreateFormat adds a format, optionally scoped to a category.
func CreateFormat(name, descEn, descAr string, categoryID *uint64) (*model.Format, error) {
	format := model.Format{
		Name:          name,
		DescriptionEn: descEn,
		DescriptionAr: descAr,
		CategoryID:    categoryID,
		IsActive:      true,
	}
	if err := repo.Db.Create(&format).Error; err != nil {
		return nil, err
	}
	return &format, nil
}

// UpdateFormat changes a format's fields.
func UpdateFormat(id uint64, name, descEn, descAr string, isActive *bool) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if descEn != "" {
		updates["description_en"] = descEn
	}
	if descAr != "" {
		updates["description_ar"] = descAr
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if len(updates) == 0 {
		return nil
	}
	result := repo.Db.Model(&model.Format{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteFormat removes a format; files keep their rows with the reference
// cleared.
func DeleteFormat(id uint64) error {
	return repo.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.File{}).Where("format_id = ?", id).
			Update("format_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Format{}, id).Error
	})
}
