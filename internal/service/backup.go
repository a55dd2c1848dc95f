package service

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/model"
	"TeleVault/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ErrBackupUnsupported is returned when the active database driver has no
// file to snapshot.
var ErrBackupUnsupported = errors.New("backups require the sqlite driver")

// CreateBackup snapshots the sqlite database file into the backup directory
// and records a row for it. On failure every admin is told, and the
// configured alert address gets a mail.
func CreateBackup(ctx context.Context, sender Sender, queue Publisher, auto bool) (*model.Backup, error) {
	backup, err := createBackupFile(auto)
	if err != nil {
		reportBackupFailure(ctx, sender, queue, err)
		return nil, err
	}
	return backup, nil
}

func createBackupFile(auto bool) (*model.Backup, error) {
	if config.AppConfig.DBDriver != "sqlite" {
		return nil, ErrBackupUnsupported
	}
	src := config.AppConfig.DBPath
	if err := os.MkdirAll(config.AppConfig.BackupDir, 0o755); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	dst := filepath.Join(config.AppConfig.BackupDir, name)

	size, err := copyFile(src, dst)
	if err != nil {
		return nil, err
	}

	backup := model.Backup{
		Filename: name,
		Size:     size,
		IsAuto:   auto,
	}
	if err := repo.Db.Create(&backup).Error; err != nil {
		return nil, err
	}
	log.Printf("backup: wrote %s (%s)", name, utils.FileSizeStr(size))
	return &backup, nil
}

func reportBackupFailure(ctx context.Context, sender Sender, queue Publisher, cause error) {
	log.Printf("backup: failed: %v", cause)
	admins, err := repo.Db.Model(&model.User{}).Where("is_admin = ?", true).Rows()
	if err == nil {
		defer admins.Close()
		for admins.Next() {
			var admin model.User
			if repo.Db.ScanRows(admins, &admin) != nil {
				continue
			}
			msg := fmt.Sprintf("⚠️ Database backup failed: %v", cause)
			if err := Notify(ctx, sender, queue, admin.ID, msg, NotifySystem); err != nil {
				log.Printf("backup: failure notice to admin %d failed: %v", admin.ID, err)
			}
		}
	}
	if config.AppConfig.AdminEmail != "" {
		if err := utils.SendBackupAlert(config.AppConfig.AdminEmail, cause.Error()); err != nil {
			log.Printf("backup: alert mail failed: %v", err)
		}
	}
}

// RestoreBackup replaces the live sqlite file with a stored snapshot. The
// current file is kept next to it under a timestamped suffix; the process
// must be restarted afterwards so the pool reopens the new file.
func RestoreBackup(id uint64) error {
	if config.AppConfig.DBDriver != "sqlite" {
		return ErrBackupUnsupported
	}
	var backup model.Backup
	if err := repo.Db.Where("id = ?", id).First(&backup).Error; err != nil {
		return err
	}
	src := filepath.Join(config.AppConfig.BackupDir, backup.Filename)
	if _, err := os.Stat(src); err != nil {
		return err
	}

	live := config.AppConfig.DBPath
	saved := fmt.Sprintf("%s.pre_restore_%s", live, time.Now().Format("20060102_150405"))
	if _, err := copyFile(live, saved); err != nil {
		return err
	}
	if _, err := copyFile(src, live); err != nil {
		return err
	}
	log.Printf("backup: restored %s, previous database kept at %s", backup.Filename, saved)
	return nil
}

// DeleteBackup removes a snapshot file and its row.
func DeleteBackup(id uint64) error {
	var backup model.Backup
	if err := repo.Db.Where("id = ?", id).First(&backup).Error; err != nil {
		return err
	}
	path := filepath.Join(config.AppConfig.BackupDir, backup.Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return repo.Db.Delete(&backup).Error
}

// ListBackups returns all snapshots, newest first.
func ListBackups() ([]model.Backup, error) {
	var backups []model.Backup
	err := repo.Db.Order("created_at DESC").Find(&backups).Error
	return backups, err
}

// RunBackupScheduler takes automatic snapshots on the configured interval
// until ctx is cancelled. The interval is re-read each cycle so a settings
// change applies without a restart.
func RunBackupScheduler(ctx context.Context, sender Sender, queue Publisher) {
	for {
		hours := GetSettingInt(SettingBackupFrequency, config.AppConfig.BackupHours)
		if hours <= 0 {
			hours = 24
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(hours) * time.Hour):
			if _, err := CreateBackup(ctx, sender, queue, true); err != nil {
				log.Printf("backup: scheduled run failed: %v", err)
			}
		}
	}
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()
	n, err := io.Copy(out, in)
	if err != nil {
		return 0, err
	}
	return n, out.Sync()
}
