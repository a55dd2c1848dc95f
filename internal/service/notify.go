package service

import (
	"TeleVault/internal/repo"
	"TeleVault/internal/transport"
	"TeleVault/model"
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// Notification types persisted in notification rows.
const (
	NotifyGeneral   = "general"
	NotifyDownload  = "download"
	NotifyBroadcast = "broadcast"
	NotifySystem    = "system"
)

// Sender delivers a plain message to a user chat. Satisfied by the telegram
// transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb transport.Keyboard) error
}

// Publisher hands a stored notification id to the delivery queue.
type Publisher interface {
	PublishNotification(id uint64) error
}

// Notify stores a notification row and hands it off for delivery. With a
// queue configured delivery is asynchronous; otherwise it is attempted
// inline and a failure leaves the row undelivered for a later sweep.
func Notify(ctx context.Context, sender Sender, queue Publisher, userID uint64, message, notifyType string) error {
	n := model.Notification{
		UserID:  userID,
		Message: message,
		Type:    notifyType,
	}
	if err := repo.Db.Create(&n).Error; err != nil {
		return err
	}
	if queue != nil {
		if err := queue.PublishNotification(n.ID); err == nil {
			return nil
		} else {
			log.Printf("notify: publish failed for notification %d, delivering inline: %v", n.ID, err)
		}
	}
	if sender != nil {
		if err := DeliverNotification(ctx, sender, n.ID); err != nil {
			log.Printf("notify: inline delivery failed for notification %d: %v", n.ID, err)
		}
	}
	return nil
}

// DeliverNotification sends one stored notification and marks it delivered.
// Already-delivered rows are skipped so redelivered queue messages are
// harmless.
func DeliverNotification(ctx context.Context, sender Sender, id uint64) error {
	var n model.Notification
	if err := repo.Db.Preload("User").Where("id = ?", id).First(&n).Error; err != nil {
		return err
	}
	if n.Delivered {
		return nil
	}
	if err := sender.SendMessage(ctx, n.User.TelegramID, n.Message, nil); err != nil {
		return err
	}
	now := time.Now()
	return repo.Db.Model(&n).Updates(map[string]interface{}{
		"delivered":    true,
		"delivered_at": now,
	}).Error
}

// NotifyFileDownloaded tells a file's owner someone fetched their file.
// Owners are not notified about their own downloads.
func NotifyFileDownloaded(ctx context.Context, sender Sender, queue Publisher, file *model.File, downloader *model.User) {
	if file.OwnerID == downloader.ID {
		return
	}
	owner, err := GetUserByID(file.OwnerID)
	if err != nil {
		log.Printf("notify: owner %d lookup failed: %v", file.OwnerID, err)
		return
	}
	who := downloader.FirstName
	if downloader.Username != "" {
		who = "@" + downloader.Username
	}
	msg := fmt.Sprintf("📥 %s downloaded your file \"%s\".", who, file.FileName)
	if err := Notify(ctx, sender, queue, owner.ID, msg, NotifyDownload); err != nil {
		log.Printf("notify: download notice for file %d failed: %v", file.ID, err)
	}
}

// Broadcast stores one notification per target user and enqueues them all.
// Returns how many rows were created.
func Broadcast(ctx context.Context, sender Sender, queue Publisher, message string, activeDays int) (int, error) {
	var users []model.User
	var err error
	if activeDays > 0 {
		users, err = ActiveUsers(activeDays)
	} else {
		users, err = AllUsers()
	}
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range users {
		if users[i].IsBanned {
			continue
		}
		if err := Notify(ctx, sender, queue, users[i].ID, message, NotifyBroadcast); err != nil {
			log.Printf("notify: broadcast to user %d failed: %v", users[i].ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// UserNotifications pages a user's notifications, newest first.
func UserNotifications(userID uint64, offset, limit int) ([]model.Notification, error) {
	var out []model.Notification
	err := repo.Db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// MarkNotificationRead flips a notification's read flag for its owner.
func MarkNotificationRead(userID, id uint64) error {
	now := time.Now()
	result := repo.Db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UndeliveredNotifications lists rows still waiting on delivery, oldest
// first. Used by the startup sweep when no queue is configured.
func UndeliveredNotifications(limit int) ([]model.Notification, error) {
	var out []model.Notification
	err := repo.Db.Where("delivered = ?", false).
		Order("created_at").Limit(limit).Find(&out).Error
	return out, err
}
