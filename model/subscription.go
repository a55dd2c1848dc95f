package model

import "time"

// SubscriptionChannel is a channel users must join before gated actions.
type SubscriptionChannel struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	ChannelID   int64  `gorm:"column:channel_id;not null" json:"channel_id"`
	ChannelName string `gorm:"column:channel_name;size:255;not null" json:"channel_name"`
	ChannelLink string `gorm:"column:channel_link;size:255;not null" json:"channel_link"`

	IsRequired bool `gorm:"column:is_required;not null;default:true" json:"is_required"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (SubscriptionChannel) TableName() string {
	return "subscription_channels"
}
