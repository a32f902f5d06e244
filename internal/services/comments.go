package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
)

// CommentFilter narrows a comment listing. Zero values mean no constraint.
type CommentFilter struct {
	VideoID      uint
	UserID       uint
	SubscriberID uint
}

// VideoRef is a video inside other projections
type VideoRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CommentView is one row of a comment listing
type CommentView struct {
	ID           uint      `json:"id"`
	Content      string    `json:"content"`
	CreationDate time.Time `json:"creationDate"`
	UserName     string    `json:"userName"`
	UserID       uint      `json:"userId"`
	Video        VideoRef  `json:"video"`
}

// ListComments returns comments oldest first
func ListComments(ctx context.Context, db *gorm.DB, f CommentFilter, page Page) ([]CommentView, error) {
	q := quiet(db).WithContext(ctx).Model(&models.Comment{})

	if f.VideoID != 0 {
		q = q.Where("comments.video_id = ?", f.VideoID)
	}
	if f.UserID != 0 {
		q = q.Where("comments.user_id = ?", f.UserID)
	}
	if f.SubscriberID != 0 {
		followed := db.Model(&models.Subscription{}).
			Select("subscribed_to_id").
			Where("subscriber_id = ?", f.SubscriberID)
		q = q.Where("comments.user_id IN (?)", followed)
	}

	var comments []models.Comment
	err := page.apply(q.Order("comments.creation_date ASC").Order("comments.id ASC")).
		Preload("User", userRefScope).
		Preload("Video", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentView(&c))
	}
	return out, nil
}

func commentView(c *models.Comment) CommentView {
	return CommentView{
		ID:           c.ID,
		Content:      c.Content,
		CreationDate: c.CreationDate,
		UserName:     c.User.DisplayName,
		UserID:       c.UserID,
		Video:        VideoRef{ID: c.Video.ID, Name: c.Video.Name},
	}
}

// AddComment records a comment by the authenticated user
func AddComment(ctx context.Context, db *gorm.DB, userID, videoID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, types.BadRequest("Comment content is required.")
	}
	if _, err := findVideo(ctx, db, videoID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:      content,
		CreationDate: time.Now().UTC(),
		UserID:       userID,
		VideoID:      videoID,
	}
	if err := db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// FindComment loads a comment, NotFound when missing
func FindComment(ctx context.Context, db *gorm.DB, commentID uint) (*models.Comment, error) {
	var c models.Comment
	if err := db.WithContext(ctx).First(&c, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Comment not found.")
		}
		return nil, err
	}
	return &c, nil
}

// UpdateComment replaces the content of a comment
func UpdateComment(ctx context.Context, db *gorm.DB, commentID uint, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return types.BadRequest("Comment content is required.")
	}
	if _, err := FindComment(ctx, db, commentID); err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", commentID).Update("content", content).Error
}

// DeleteComment removes a single comment
func DeleteComment(ctx context.Context, db *gorm.DB, commentID uint) error {
	return deleteRow[models.Comment](ctx, db, commentID, "Comment not found.")
}
