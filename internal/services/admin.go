package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
)

// EntityKind names the entity families the admin console manages
type EntityKind int

const (
	EntityTag EntityKind = iota + 1
	EntityVideo
	EntityComment
	EntityUser
	EntitySubscription
)

var entityNames = map[EntityKind]string{
	EntityTag:          "tag",
	EntityVideo:        "video",
	EntityComment:      "comment",
	EntityUser:         "user",
	EntitySubscription: "subscription",
}

func (k EntityKind) String() string {
	if n, ok := entityNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseEntityKind accepts singular or plural names in any case
func ParseEntityKind(s string) (EntityKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, "s")
	for k, n := range entityNames {
		if n == name {
			return k, nil
		}
	}
	return 0, types.BadRequest("Invalid entity type.")
}

// entityOps is the per-kind behavior behind the admin dispatcher
type entityOps struct {
	get    func(ctx context.Context, db *gorm.DB, id uint) (any, error)
	list   func(ctx context.Context, db *gorm.DB, page Page) (any, error)
	remove func(ctx context.Context, db *gorm.DB, store media.Store, id uint) error
}

var entityTable = map[EntityKind]entityOps{
	EntityTag: {
		get:  adminGetTag,
		list: adminListTags,
		remove: func(ctx context.Context, db *gorm.DB, _ media.Store, id uint) error {
			return DeleteTag(ctx, db, id)
		},
	},
	EntityVideo: {
		get:    adminGetVideo,
		list:   adminListVideos,
		remove: DeleteVideo,
	},
	EntityComment: {
		get:  adminGetComment,
		list: adminListComments,
		remove: func(ctx context.Context, db *gorm.DB, _ media.Store, id uint) error {
			return DeleteComment(ctx, db, id)
		},
	},
	EntityUser: {
		get:    adminGetUser,
		list:   adminListUsers,
		remove: DeleteUser,
	},
	EntitySubscription: {
		get:  adminGetSubscription,
		list: adminListSubscriptions,
		remove: func(ctx context.Context, db *gorm.DB, _ media.Store, id uint) error {
			return deleteRow[models.Subscription](ctx, db, id, "Subscription not found.")
		},
	},
}

// Admin dispatches generic entity requests from the admin console
type Admin struct {
	DB    *gorm.DB
	Store media.Store
}

func (a *Admin) ops(kind EntityKind) (entityOps, error) {
	ops, ok := entityTable[kind]
	if !ok {
		return entityOps{}, types.BadRequest("Invalid entity type.")
	}
	return ops, nil
}

// GetEntity returns the admin projection of one entity
func (a *Admin) GetEntity(ctx context.Context, kind EntityKind, id uint) (any, error) {
	ops, err := a.ops(kind)
	if err != nil {
		return nil, err
	}
	return ops.get(ctx, quiet(a.DB), id)
}

// ListEntities returns a page of admin list projections, ordered by id
func (a *Admin) ListEntities(ctx context.Context, kind EntityKind, page Page) (any, error) {
	ops, err := a.ops(kind)
	if err != nil {
		return nil, err
	}
	return ops.list(ctx, quiet(a.DB), page)
}

// DeleteEntity deletes through the same plans the public endpoints use
func (a *Admin) DeleteEntity(ctx context.Context, kind EntityKind, id uint) error {
	ops, err := a.ops(kind)
	if err != nil {
		return err
	}
	return ops.remove(ctx, a.DB, a.Store, id)
}

// Admin projections

type AdminTag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type AdminVideo struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	UploadDate  time.Time `json:"uploadDate"`
	ViewCount   int64     `json:"viewCount"`
	TagIDs      []uint    `json:"tagIds,omitempty"`
	Users       []UserRef `json:"users,omitempty"`
	Tags        []TagRef  `json:"tags,omitempty"`
}

type AdminComment struct {
	ID           uint       `json:"id"`
	Content      string     `json:"content"`
	CreationDate time.Time  `json:"creationDate"`
	UserID       uint       `json:"userId"`
	UserName     string     `json:"userName"`
	VideoID      uint       `json:"videoId"`
	VideoName    string     `json:"videoName"`
	Users        []UserRef  `json:"users,omitempty"`
	Videos       []VideoRef `json:"videos,omitempty"`
}

type AdminUser struct {
	ID               uint          `json:"id"`
	DisplayName      string        `json:"displayName"`
	Email            string        `json:"email"`
	Role             models.Role   `json:"role"`
	RegistrationDate time.Time     `json:"registrationDate"`
	Roles            []models.Role `json:"roles,omitempty"`
}

type AdminSubscription struct {
	ID               uint      `json:"id"`
	SubscriberID     uint      `json:"subscriberId"`
	SubscriberName   string    `json:"subscriberName"`
	SubscribedToID   uint      `json:"subscribedToId"`
	SubscribedToName string    `json:"subscribedToName"`
	SubscriptionDate time.Time `json:"subscriptionDate"`
	Users            []UserRef `json:"users,omitempty"`
}

func first[T any](ctx context.Context, db *gorm.DB, id uint, notFound string, preloads ...string) (*T, error) {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var v T
	if err := q.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound(notFound)
		}
		return nil, err
	}
	return &v, nil
}

func userOptions(ctx context.Context, db *gorm.DB) ([]UserRef, error) {
	var users []models.User
	if err := db.WithContext(ctx).Select("id", "display_name").Order("display_name").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]UserRef, 0, len(users))
	for _, u := range users {
		out = append(out, UserRef{ID: u.ID, DisplayName: u.DisplayName})
	}
	return out, nil
}

func videoOptions(ctx context.Context, db *gorm.DB) ([]VideoRef, error) {
	var videos []models.Video
	if err := db.WithContext(ctx).Select("id", "name").Order("name").Order("id").Find(&videos).Error; err != nil {
		return nil, err
	}
	out := make([]VideoRef, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoRef{ID: v.ID, Name: v.Name})
	}
	return out, nil
}

func adminGetTag(ctx context.Context, db *gorm.DB, id uint) (any, error) {
	t, err := first[models.Tag](ctx, db, id, "Tag not found.")
	if err != nil {
		return nil, err
	}
	return AdminTag{ID: t.ID, Name: t.Name}, nil
}

func adminListTags(ctx context.Context, db *gorm.DB, page Page) (any, error) {
	var tags []models.Tag
	if err := page.apply(db.WithContext(ctx).Order("id")).Find(&tags).Error; err != nil {
		return nil, err
	}
	out := make([]AdminTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, AdminTag{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func adminGetVideo(ctx context.Context, db *gorm.DB, id uint) (any, error) {
	v, err := first[models.Video](ctx, db, id, "Video not found.", "User", "VideoTags")
	if err != nil {
		return nil, err
	}
	users, err := userOptions(ctx, db)
	if err != nil {
		return nil, err
	}
	tags, err := ListTags(ctx, db)
	if err != nil {
		return nil, err
	}
	tagIDs := make([]uint, 0, len(v.VideoTags))
	for _, vt := range v.VideoTags {
		tagIDs = append(tagIDs, vt.TagID)
	}
	return AdminVideo{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		UserID:      v.UserID,
		UserName:    v.User.DisplayName,
		UploadDate:  v.UploadDate,
		ViewCount:   v.ViewCount,
		TagIDs:      tagIDs,
		Users:       users,
		Tags:        tags,
	}, nil
}

func adminListVideos(ctx context.Context, db *gorm.DB, page Page) (any, error) {
	var videos []models.Video
	if err := page.apply(db.WithContext(ctx).Order("id")).Preload("User", userRefScope).Find(&videos).Error; err != nil {
		return nil, err
	}
	out := make([]AdminVideo, 0, len(videos))
	for _, v := range videos {
		out = append(out, AdminVideo{
			ID:         v.ID,
			Name:       v.Name,
			UserID:     v.UserID,
			UserName:   v.User.DisplayName,
			UploadDate: v.UploadDate,
			ViewCount:  v.ViewCount,
		})
	}
	return out, nil
}

func adminGetComment(ctx context.Context, db *gorm.DB, id uint) (any, error) {
	c, err := first[models.Comment](ctx, db, id, "Comment not found.", "User", "Video")
	if err != nil {
		return nil, err
	}
	users, err := userOptions(ctx, db)
	if err != nil {
		return nil, err
	}
	videos, err := videoOptions(ctx, db)
	if err != nil {
		return nil, err
	}
	return AdminComment{
		ID:           c.ID,
		Content:      c.Content,
		CreationDate: c.CreationDate,
		UserID:       c.UserID,
		UserName:     c.User.DisplayName,
		VideoID:      c.VideoID,
		VideoName:    c.Video.Name,
		Users:        users,
		Videos:       videos,
	}, nil
}

func adminListComments(ctx context.Context, db *gorm.DB, page Page) (any, error) {
	var comments []models.Comment
	err := page.apply(db.WithContext(ctx).Order("id")).
		Preload("User", userRefScope).
		Preload("Video", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	out := make([]AdminComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, AdminComment{
			ID:           c.ID,
			Content:      c.Content,
			CreationDate: c.CreationDate,
			UserID:       c.UserID,
			UserName:     c.User.DisplayName,
			VideoID:      c.VideoID,
			VideoName:    c.Video.Name,
		})
	}
	return out, nil
}

func adminUser(u *models.User) AdminUser {
	return AdminUser{
		ID:               u.ID,
		DisplayName:      u.DisplayName,
		Email:            u.Email,
		Role:             u.Role,
		RegistrationDate: u.RegistrationDate,
	}
}

func adminGetUser(ctx context.Context, db *gorm.DB, id uint) (any, error) {
	u, err := first[models.User](ctx, db, id, "User not found.")
	if err != nil {
		return nil, err
	}
	out := adminUser(u)
	out.Roles = models.Roles
	return out, nil
}

func adminListUsers(ctx context.Context, db *gorm.DB, page Page) (any, error) {
	var users []models.User
	if err := page.apply(db.WithContext(ctx).Order("id")).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]AdminUser, 0, len(users))
	for i := range users {
		out = append(out, adminUser(&users[i]))
	}
	return out, nil
}

func adminSubscription(s *models.Subscription) AdminSubscription {
	return AdminSubscription{
		ID:               s.ID,
		SubscriberID:     s.SubscriberID,
		SubscriberName:   s.Subscriber.DisplayName,
		SubscribedToID:   s.SubscribedToID,
		SubscribedToName: s.SubscribedTo.DisplayName,
		SubscriptionDate: s.SubscriptionDate,
	}
}

func adminGetSubscription(ctx context.Context, db *gorm.DB, id uint) (any, error) {
	s, err := first[models.Subscription](ctx, db, id, "Subscription not found.", "Subscriber", "SubscribedTo")
	if err != nil {
		return nil, err
	}
	users, err := userOptions(ctx, db)
	if err != nil {
		return nil, err
	}
	out := adminSubscription(s)
	out.Users = users
	return out, nil
}

func adminListSubscriptions(ctx context.Context, db *gorm.DB, page Page) (any, error) {
	var subs []models.Subscription
	err := page.apply(db.WithContext(ctx).Order("id")).
		Preload("Subscriber", userRefScope).
		Preload("SubscribedTo", userRefScope).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	out := make([]AdminSubscription, 0, len(subs))
	for i := range subs {
		out = append(out, adminSubscription(&subs[i]))
	}
	return out, nil
}

// Typed admin updates

// AdminVideoUpdate replaces a video's name, owner, description and tag set
type AdminVideoUpdate struct {
	ID          uint
	Name        string
	Description string
	UserID      uint
	TagIDs      []uint
}

func (a *Admin) UpdateVideo(ctx context.Context, in AdminVideoUpdate) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return types.BadRequest("Video name is required.")
	}
	return a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findVideo(ctx, tx, in.ID); err != nil {
			return err
		}
		if _, err := FindUser(ctx, tx, in.UserID); err != nil {
			return err
		}
		err := tx.Model(&models.Video{}).Where("id = ?", in.ID).Updates(map[string]any{
			"name":        name,
			"description": in.Description,
			"user_id":     in.UserID,
		}).Error
		if err != nil {
			return err
		}
		_, err = replaceVideoTags(tx, in.ID, in.TagIDs)
		return err
	})
}

// AdminCommentUpdate moves or rewrites a comment
type AdminCommentUpdate struct {
	ID      uint
	UserID  uint
	VideoID uint
	Content string
}

func (a *Admin) UpdateComment(ctx context.Context, in AdminCommentUpdate) error {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return types.BadRequest("Comment content is required.")
	}
	return a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := FindComment(ctx, tx, in.ID); err != nil {
			return err
		}
		if _, err := FindUser(ctx, tx, in.UserID); err != nil {
			return err
		}
		if _, err := findVideo(ctx, tx, in.VideoID); err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", in.ID).Updates(map[string]any{
			"content":  content,
			"user_id":  in.UserID,
			"video_id": in.VideoID,
		}).Error
	})
}

// AdminUserUpdate changes any account field, including the role
type AdminUserUpdate struct {
	ID          uint
	DisplayName string `validate:"max=256"`
	Email       string `validate:"omitempty,email,max=256"`
	NewPassword string
	Role        string
}

func (a *Admin) UpdateUser(ctx context.Context, in AdminUserUpdate) error {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkStruct(in, "Invalid user update."); err != nil {
		return err
	}
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := FindUser(ctx, tx, in.ID)
		if err != nil {
			return err
		}
		return applyUserChanges(tx, u, in.DisplayName, in.Email, in.NewPassword, in.Role)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return emailTaken(in.Email)
	}
	return err
}

// AdminSubscriptionUpdate re-points a subscription
type AdminSubscriptionUpdate struct {
	ID             uint
	SubscriberID   uint
	SubscribedToID uint
}

func (a *Admin) UpdateSubscription(ctx context.Context, in AdminSubscriptionUpdate) error {
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := first[models.Subscription](ctx, tx, in.ID, "Subscription not found."); err != nil {
			return err
		}
		if err := checkSubscriptionPair(tx, in.SubscriberID, in.SubscribedToID, in.ID); err != nil {
			return err
		}
		return tx.Model(&models.Subscription{}).Where("id = ?", in.ID).Updates(map[string]any{
			"subscriber_id":    in.SubscriberID,
			"subscribed_to_id": in.SubscribedToID,
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return alreadySubscribed()
	}
	return err
}

// UpdateTag renames a tag
func (a *Admin) UpdateTag(ctx context.Context, id uint, name string) error {
	return UpdateTag(ctx, a.DB, id, name)
}
