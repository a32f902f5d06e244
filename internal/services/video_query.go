package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Video sort orders
const (
	OrderByUploadDate = "uploadDate"
	OrderByViews      = "views"
)

// VideoFilter narrows a video listing. Zero values mean no constraint.
type VideoFilter struct {
	SearchTerm   string
	TagIDs       []uint
	UserID       uint
	SubscriberID uint
	OrderBy      string
}

// UserRef is the public face of a user inside other projections
type UserRef struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"displayName"`
}

// TagRef is a tag inside other projections
type TagRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// VideoSummary is one row of a video listing
type VideoSummary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	ThumbnailPath string    `json:"thumbnailPath"`
	UploadDate    time.Time `json:"uploadDate"`
	Description   string    `json:"description"`
	ViewCount     int64     `json:"viewCount"`
	User          UserRef   `json:"user"`
}

// VideoDetail is the single video view
type VideoDetail struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	UploadPath      string    `json:"uploadPath"`
	ThumbnailPath   string    `json:"thumbnailPath"`
	UploadDate      time.Time `json:"uploadDate"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"descriptionHtml"`
	ViewCount       int64     `json:"viewCount"`
	DurationSeconds float64   `json:"durationSeconds"`
	User            UserRef   `json:"user"`
	Tags            []TagRef  `json:"tags"`
}

func userRefScope(db *gorm.DB) *gorm.DB {
	return db.Select("id", "display_name")
}

// tagFilterQueryTag prefixes the tag-filtered list query so it can be picked
// out of slow query logs, where the GROUP BY/HAVING subquery is the usual cost
const tagFilterQueryTag = "videos:tag-filter"

// ListVideos returns a page of videos matching every filter in f
func ListVideos(ctx context.Context, db *gorm.DB, f VideoFilter, page Page) ([]VideoSummary, error) {
	q := quiet(db).WithContext(ctx).Model(&models.Video{})

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		q = q.Where("LOWER(videos.name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	if tagIDs := types.UniqueIDs(f.TagIDs); len(tagIDs) > 0 {
		// a video must carry every requested tag
		tagged := db.Model(&models.VideoTag{}).
			Select("video_id").
			Where("tag_id IN ?", tagIDs).
			Group("video_id").
			Having("COUNT(DISTINCT tag_id) = ?", len(tagIDs))
		q = q.Where("videos.id IN (?)", tagged).
			Clauses(hints.CommentBefore("select", tagFilterQueryTag))
	}

	if f.UserID != 0 {
		q = q.Where("videos.user_id = ?", f.UserID)
	}

	if f.SubscriberID != 0 {
		followed := db.Model(&models.Subscription{}).
			Select("subscribed_to_id").
			Where("subscriber_id = ?", f.SubscriberID)
		q = q.Where("videos.user_id IN (?)", followed)
	}

	if f.OrderBy == OrderByViews {
		q = q.Order("videos.view_count DESC")
	} else {
		q = q.Order("videos.upload_date DESC")
	}
	q = q.Order("videos.id ASC")

	var videos []models.Video
	if err := page.apply(q).Preload("User", userRefScope).Find(&videos).Error; err != nil {
		return nil, err
	}

	out := make([]VideoSummary, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoSummary{
			ID:            v.ID,
			Name:          v.Name,
			ThumbnailPath: v.ThumbnailPath,
			UploadDate:    v.UploadDate,
			Description:   v.Description,
			ViewCount:     v.ViewCount,
			User:          UserRef{ID: v.User.ID, DisplayName: v.User.DisplayName},
		})
	}
	return out, nil
}

// GetVideo returns the detail projection, with the description rendered to HTML
func GetVideo(ctx context.Context, db *gorm.DB, videoID uint) (*VideoDetail, error) {
	var v models.Video
	err := quiet(db).WithContext(ctx).
		Preload("User", userRefScope).
		Preload("VideoTags", func(db *gorm.DB) *gorm.DB { return db.Order("tag_id") }).
		Preload("VideoTags.Tag").
		First(&v, videoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Video not found.")
		}
		return nil, err
	}

	html, err := utils.RenderMarkdown(v.Description)
	if err != nil {
		return nil, err
	}

	tags := make([]TagRef, 0, len(v.VideoTags))
	for _, vt := range v.VideoTags {
		tags = append(tags, TagRef{ID: vt.Tag.ID, Name: vt.Tag.Name})
	}

	return &VideoDetail{
		ID:              v.ID,
		Name:            v.Name,
		UploadPath:      v.UploadPath,
		ThumbnailPath:   v.ThumbnailPath,
		UploadDate:      v.UploadDate,
		Description:     v.Description,
		DescriptionHTML: html,
		ViewCount:       v.ViewCount,
		DurationSeconds: v.DurationSeconds,
		User:            UserRef{ID: v.User.ID, DisplayName: v.User.DisplayName},
		Tags:            tags,
	}, nil
}

// findVideo loads the ownership columns of a video, NotFound when missing
func findVideo(ctx context.Context, db *gorm.DB, videoID uint) (*models.Video, error) {
	var v models.Video
	if err := db.WithContext(ctx).Select("id", "user_id", "upload_path", "thumbnail_path").First(&v, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Video not found.")
		}
		return nil, err
	}
	return &v, nil
}

// VideoOwner returns the owning user id of a video
func VideoOwner(ctx context.Context, db *gorm.DB, videoID uint) (uint, error) {
	v, err := findVideo(ctx, db, videoID)
	if err != nil {
		return 0, err
	}
	return v.UserID, nil
}
