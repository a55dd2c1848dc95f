package service

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/model"
	"TeleVault/utils"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrShareCodeExhausted is returned when a unique share code could not be
// generated within the retry bound.
var ErrShareCodeExhausted = errors.New("could not allocate a unique share code")

// shareCodeRetries bounds generate-and-insert attempts per commit.
const shareCodeRetries = 10

// UploadDraft is everything the upload conversation collected before commit.
type UploadDraft struct {
	TelegramFileID string
	FileUniqueID   string
	MessageID      int
	StorageObject  string
	FileName       string
	FileSize       int64
	FileType       string
	CategoryID     *uint64
	FormatID       *uint64
	SourceURL      *string
	TagNames       []string
	Password       *string
	IsEncrypted    bool
	ExpiryDate     *time.Time
}

// CommitUpload turns a completed draft into a file row in a single
// transaction. The share code is generated inside the transaction and
// regenerated on a unique-index collision, so a code is never observable
// before its row exists.
func CommitUpload(owner *model.User, draft UploadDraft) (*model.File, error) {
	var hashed *string
	if draft.Password != nil && *draft.Password != "" {
		h, err := utils.GetPwd(*draft.Password)
		if err != nil {
			return nil, err
		}
		hashed = &h
	}

	tags, err := GetOrCreateTags(draft.TagNames)
	if err != nil {
		return nil, err
	}

	file := model.File{
		TelegramFileID: draft.TelegramFileID,
		FileUniqueID:   draft.FileUniqueID,
		MessageID:      draft.MessageID,
		StorageObject:  draft.StorageObject,
		FileName:       draft.FileName,
		FileSize:       draft.FileSize,
		FileType:       draft.FileType,
		CategoryID:     draft.CategoryID,
		FormatID:       draft.FormatID,
		OwnerID:        owner.ID,
		SourceURL:      draft.SourceURL,
		Password:       hashed,
		IsEncrypted:    draft.IsEncrypted,
		UploadDate:     time.Now(),
		ExpiryDate:     draft.ExpiryDate,
		Tags:           tags,
	}

	for attempt := 0; attempt < shareCodeRetries; attempt++ {
		code := utils.GenShareCode()
		file.ShareCode = code
		file.ShareLink = utils.BuildShareLink(config.AppConfig.BotUsername, code)

		err = repo.Db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&file).Error
		})
		if err == nil {
			return &file, nil
		}
		if !isDuplicateErr(err) {
			return nil, err
		}
		file.ID = 0
	}
	return nil, ErrShareCodeExhausted
}

// GetFileByShareCode resolves a share code for redemption. Expired files are
// indistinguishable from absent ones.
func GetFileByShareCode(code string) (*model.File, error) {
	var file model.File
	err := repo.Db.Preload("Tags").Preload("Category").Preload("Format").
		Where("share_code = ?", code).First(&file).Error
	if err != nil {
		return nil, err
	}
	if file.Expired(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	return &file, nil
}

// GetFileByID loads a file with its associations.
func GetFileByID(id uint64) (*model.File, error) {
	var file model.File
	err := repo.Db.Preload("Tags").Preload("Category").Preload("Format").
		Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// RegisterDownload records one confirmed delivery: the file counter plus the
// per-user stats row. Called only after the transfer succeeded.
func RegisterDownload(fileID, userID uint64) error {
	now := time.Now()
	return repo.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.File{}).Where("id = ?", fileID).
			UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
			return err
		}
		var stat model.FileDownload
		err := tx.Where("file_id = ? AND user_id = ?", fileID, userID).First(&stat).Error
		if err == nil {
			return tx.Model(&stat).Updates(map[string]interface{}{
				"download_count": gorm.Expr("download_count + 1"),
				"last_download":  now,
			}).Error
		}
		if !isNotFound(err) {
			return err
		}
		stat = model.FileDownload{
			FileID:        fileID,
			UserID:        userID,
			DownloadCount: 1,
			FirstDownload: now,
			LastDownload:  now,
		}
		if err := tx.Create(&stat).Error; err != nil && !isDuplicateErr(err) {
			return err
		}
		return nil
	})
}

// RegisterView bumps a file's view counter.
func RegisterView(fileID uint64) error {
	return repo.Db.Model(&model.File{}).Where("id = ?", fileID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// RateFile folds one rating into the file's aggregate.
func RateFile(fileID uint64, stars int) error {
	if stars < 1 || stars > 5 {
		return errors.New("rating out of range")
	}
	return repo.Db.Model(&model.File{}).Where("id = ?", fileID).Updates(map[string]interface{}{
		"rating_sum":   gorm.Expr("rating_sum + ?", stars),
		"rating_count": gorm.Expr("rating_count + 1"),
	}).Error
}

// DeleteFile removes a file and its dependent rows in one transaction:
// the tag join rows and the per-user download stats go with it.
func DeleteFile(fileID uint64) error {
	return repo.Db.Transaction(func(tx *gorm.DB) error {
		var file model.File
		if err := tx.Where("id = ?", fileID).First(&file).Error; err != nil {
			return err
		}
		if err := tx.Model(&file).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", fileID).Delete(&model.FileDownload{}).Error; err != nil {
			return err
		}
		return tx.Delete(&file).Error
	})
}

// GetUserFiles lists a user's uploads, newest first.
func GetUserFiles(userID uint64, offset, limit int) ([]model.File, int64, error) {
	var files []model.File
	var total int64
	q := repo.Db.Model(&model.File{}).Where("owner_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Tags").Order("upload_date DESC").
		Offset(offset).Limit(limit).Find(&files).Error
	return files, total, err
}

// UpdateFileMeta changes the editable metadata fields of a file.
func UpdateFileMeta(fileID uint64, name string, categoryID, formatID *uint64, sourceURL *string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["file_name"] = name
	}
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}
	if formatID != nil {
		updates["format_id"] = *formatID
	}
	if sourceURL != nil {
		updates["source_url"] = *sourceURL
	}
	if len(updates) == 0 {
		return nil
	}
	result := repo.Db.Model(&model.File{}).Where("id = ?", fileID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
