package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"context"
)

// MemberChecker answers whether a user currently belongs to a channel.
// Satisfied by the telegram transport.
type MemberChecker interface {
	ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error)
}

// CanUpload decides whether a user may start an upload. Banned users are
// always denied; admins and moderators always pass; everyone else needs
// the public-upload setting on plus their own can-upload flag.
func CanUpload(user *model.User) bool {
	if user.IsBanned {
		return false
	}
	if user.IsAdmin || user.IsModerator {
		return true
	}
	if !GetSettingBool(SettingAllowPublicUpload, true) {
		return false
	}
	return user.CanUpload
}

// CanManageFile reports whether a user may view metadata for, edit or delete
// a file. Owners manage their own files; admins and moderators manage any.
func CanManageFile(user *model.User, file *model.File) bool {
	if user.IsBanned {
		return false
	}
	if user.IsAdmin || user.IsModerator {
		return true
	}
	return file.OwnerID == user.ID
}

// RequiredChannels lists the channels a user must be subscribed to.
func RequiredChannels() ([]model.SubscriptionChannel, error) {
	var channels []model.SubscriptionChannel
	err := repo.Db.Where("is_required = ?", true).Find(&channels).Error
	return channels, err
}

// IsSubscribed checks the user against every required channel. A membership
// lookup that errors counts as not subscribed.
func IsSubscribed(ctx context.Context, checker MemberChecker, user *model.User) (bool, error) {
	if !GetSettingBool(SettingRequireSubscription, true) {
		return true, nil
	}
	if user.IsAdmin || user.IsModerator {
		return true, nil
	}
	channels, err := RequiredChannels()
	if err != nil {
		return false, err
	}
	for _, ch := range channels {
		status, err := checker.ChatMemberStatus(ctx, ch.ChannelID, user.TelegramID)
		if err != nil {
			return false, nil
		}
		switch status {
		case "creator", "administrator", "member":
		default:
			return false, nil
		}
	}
	return true, nil
}

// AddChannel registers a subscription channel.
func AddChannel(channelID int64, name, link string, required bool) (*model.SubscriptionChannel, error) {
	ch := model.SubscriptionChannel{
		ChannelID:   channelID,
		ChannelName: name,
		ChannelLink: link,
		IsRequired:  required,
	}
	if err := repo.Db.Create(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

// RemoveChannel deletes a subscription channel.
func RemoveChannel(id uint64) error {
	return repo.Db.Delete(&model.SubscriptionChannel{}, id).Error
}

// ListChannels returns every configured channel.
func ListChannels() ([]model.SubscriptionChannel, error) {
	var channels []model.SubscriptionChannel
	err := repo.Db.Order("id").Find(&channels).Error
	return channels, err
}
