package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/localnerve/videohost/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword satisfies the password policy and matches every fixture user
const TestPassword = "Testing1!"

var testPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("Failed to create fixture %T: %v", v, err)
	}
}

// CreateUser adds a user with TestPassword
func CreateUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		DisplayName:  name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: testPasswordHash,
		Role:         role,
	}
	mustCreate(t, db, u)
	return u
}

// CreateVideo adds a video owned by userID. Its file paths are derived from
// the name so tests can check which files were removed.
func CreateVideo(t *testing.T, db *gorm.DB, userID uint, name string) *models.Video {
	t.Helper()
	v := &models.Video{
		Name:          name,
		UploadPath:    fmt.Sprintf("/uploads/%d/%s.mp4", userID, name),
		ThumbnailPath: fmt.Sprintf("/uploads/%d/%s.jpg", userID, name),
		UserID:        userID,
	}
	mustCreate(t, db, v)
	return v
}

// SetVideoStats overrides the ordering columns of a video
func SetVideoStats(t *testing.T, db *gorm.DB, videoID uint, views int64, uploaded time.Time) {
	t.Helper()
	err := db.Model(&models.Video{}).Where("id = ?", videoID).
		UpdateColumns(map[string]any{"view_count": views, "upload_date": uploaded}).Error
	if err != nil {
		t.Fatalf("Failed to update video %d: %v", videoID, err)
	}
}

func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	mustCreate(t, db, tag)
	return tag
}

// TagVideo links tags to a video
func TagVideo(t *testing.T, db *gorm.DB, videoID uint, tagIDs ...uint) {
	t.Helper()
	for _, id := range tagIDs {
		mustCreate(t, db, &models.VideoTag{VideoID: videoID, TagID: id})
	}
}

func CreateComment(t *testing.T, db *gorm.DB, userID, videoID uint, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{
		Content:      content,
		CreationDate: time.Now().UTC(),
		UserID:       userID,
		VideoID:      videoID,
	}
	mustCreate(t, db, c)
	return c
}

func CreateSubscription(t *testing.T, db *gorm.DB, subscriberID, subscribedToID uint) *models.Subscription {
	t.Helper()
	s := &models.Subscription{
		SubscriberID:     subscriberID,
		SubscribedToID:   subscribedToID,
		SubscriptionDate: time.Now().UTC(),
	}
	mustCreate(t, db, s)
	return s
}

// Count returns the number of rows of model matching an optional condition
func Count(t *testing.T, db *gorm.DB, model any, query ...any) int64 {
	t.Helper()
	q := db.Model(model)
	if len(query) > 0 {
		q = q.Where(query[0], query[1:]...)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("Failed to count %T: %v", model, err)
	}
	return n
}
