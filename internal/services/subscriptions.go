package services

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
)

// SubscriptionView is the caller's subscription to one user
type SubscriptionView struct {
	ID               uint      `json:"id"`
	SubscriberID     uint      `json:"subscriberId"`
	SubscribedToID   uint      `json:"subscribedToId"`
	SubscriptionDate time.Time `json:"subscriptionDate"`
}

// FollowedUser is one row of the caller's subscription list
type FollowedUser struct {
	ID               uint      `json:"id"`
	DisplayName      string    `json:"displayName"`
	SubscriptionDate time.Time `json:"subscriptionDate"`
}

// GetSubscription returns the subscription, or nil when there is none
func GetSubscription(ctx context.Context, db *gorm.DB, subscriberID, subscribedToID uint) (*SubscriptionView, error) {
	var s models.Subscription
	err := quiet(db).WithContext(ctx).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &SubscriptionView{
		ID:               s.ID,
		SubscriberID:     s.SubscriberID,
		SubscribedToID:   s.SubscribedToID,
		SubscriptionDate: s.SubscriptionDate,
	}, nil
}

// ListSubscriptions returns the users a subscriber follows, newest first
func ListSubscriptions(ctx context.Context, db *gorm.DB, subscriberID uint, page Page) ([]FollowedUser, error) {
	var subs []models.Subscription
	err := page.apply(quiet(db).WithContext(ctx).
		Where("subscriber_id = ?", subscriberID).
		Order("subscription_date DESC").Order("id ASC")).
		Preload("SubscribedTo", userRefScope).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	out := make([]FollowedUser, 0, len(subs))
	for _, s := range subs {
		out = append(out, FollowedUser{
			ID:               s.SubscribedToID,
			DisplayName:      s.SubscribedTo.DisplayName,
			SubscriptionDate: s.SubscriptionDate,
		})
	}
	return out, nil
}

// Subscribe records that subscriber follows target
func Subscribe(ctx context.Context, db *gorm.DB, subscriberID, subscribedToID uint) (*models.Subscription, error) {
	sub := &models.Subscription{
		SubscriberID:     subscriberID,
		SubscribedToID:   subscribedToID,
		SubscriptionDate: time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSubscriptionPair(tx, subscriberID, subscribedToID, 0); err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, alreadySubscribed()
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes the subscription, NotFound when there is none
func Unsubscribe(ctx context.Context, db *gorm.DB, subscriberID, subscribedToID uint) error {
	res := db.WithContext(ctx).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("Subscription not found.")
	}
	return nil
}

func alreadySubscribed() error {
	return types.Conflict("Already subscribed to this user.")
}

// checkSubscriptionPair enforces subscriber != target, both users existing and
// the pair being unused by any subscription other than exceptID
func checkSubscriptionPair(tx *gorm.DB, subscriberID, subscribedToID, exceptID uint) error {
	if subscriberID == subscribedToID {
		return types.Conflict("Cannot subscribe to yourself.")
	}

	var users int64
	if err := tx.Model(&models.User{}).Where("id IN ?", []uint{subscriberID, subscribedToID}).Count(&users).Error; err != nil {
		return err
	}
	if users != 2 {
		return types.NotFound("User not found.")
	}

	var dup int64
	q := tx.Model(&models.Subscription{}).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&dup).Error; err != nil {
		return err
	}
	if dup > 0 {
		return alreadySubscribed()
	}
	return nil
}
