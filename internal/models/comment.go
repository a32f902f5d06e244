package models

import (
	"time"
)

// Comment is a user's remark on a video
type Comment struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Content      string    `gorm:"type:text;not null"`
	CreationDate time.Time `gorm:"not null;autoCreateTime;index"`
	UserID       uint      `gorm:"not null;index"`
	User         User      `gorm:"foreignKey:UserID"`
	VideoID      uint      `gorm:"not null;index"`
	Video        Video     `gorm:"foreignKey:VideoID"`
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// Subscription records that Subscriber follows SubscribedTo
type Subscription struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	SubscriberID     uint      `gorm:"not null;uniqueIndex:idx_subscription_pair"`
	Subscriber       User      `gorm:"foreignKey:SubscriberID"`
	SubscribedToID   uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index"`
	SubscribedTo     User      `gorm:"foreignKey:SubscribedToID"`
	SubscriptionDate time.Time `gorm:"not null;autoCreateTime"`
}

// TableName overrides the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}
