package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/metrics"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IncrementViews adds one view atomically
func IncrementViews(ctx context.Context, db *gorm.DB, videoID uint) error {
	res := db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", videoID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("Video not found.")
	}
	return nil
}

// UpdateVideo renames a video. The description changes only when a non-blank one is given.
func UpdateVideo(ctx context.Context, db *gorm.DB, videoID uint, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.BadRequest("Video name is required.")
	}
	if _, err := findVideo(ctx, db, videoID); err != nil {
		return err
	}

	updates := map[string]any{"name": name}
	if strings.TrimSpace(description) != "" {
		updates["description"] = description
	}
	return db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", videoID).Updates(updates).Error
}

// UploadInput describes a received file. Open is only called after the
// metadata checks pass.
type UploadInput struct {
	Name        string
	Description string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// VideoUploader stages, inspects and stores uploaded videos
type VideoUploader struct {
	DB          *gorm.DB
	Store       media.Store
	Thumbnailer media.Thumbnailer
	MaxBytes    int64
	TempDir     string
	Log         logrus.FieldLogger
}

const uploadFailedMessage = "An error occurred while uploading the video."

// ValidateUpload applies the upload rules in order: a file, within the size
// limit, that is an MP4, with a name
func ValidateUpload(in *UploadInput, maxBytes int64) error {
	if in.Open == nil || in.Size <= 0 {
		return types.BadRequest("No file uploaded.")
	}
	if in.Size > maxBytes {
		return types.FileTooLarge(maxBytes)
	}
	if !isMP4(in.ContentType, in.Filename) {
		return types.BadRequest("Invalid file format. Only MP4 files are allowed.")
	}
	if strings.TrimSpace(in.Name) == "" {
		return types.BadRequest("Video name is required.")
	}
	return nil
}

func isMP4(contentType, filename string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "video/mp4" || strings.EqualFold(filepath.Ext(filename), ".mp4")
}

// Upload runs the whole pipeline for userID. Any failure after validation
// removes every file it created and leaves no row behind.
func (u *VideoUploader) Upload(ctx context.Context, userID uint, in UploadInput) (*models.Video, error) {
	if err := ValidateUpload(&in, u.MaxBytes); err != nil {
		metrics.VideoUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	video, err := u.process(ctx, userID, in)
	if err != nil {
		metrics.VideoUploads.WithLabelValues("failed").Inc()
		u.Log.WithError(err).WithField("userId", userID).Error("Video upload failed")
		return nil, types.Internal(uploadFailedMessage, err)
	}
	metrics.VideoUploads.WithLabelValues("ok").Inc()
	return video, nil
}

func (u *VideoUploader) process(ctx context.Context, userID uint, in UploadInput) (video *models.Video, err error) {
	if u.TempDir != "" {
		if err := os.MkdirAll(u.TempDir, 0o755); err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
	}

	staged, err := u.stage(in)
	if err != nil {
		return nil, err
	}
	thumb := strings.TrimSuffix(staged, filepath.Ext(staged)) + ".jpg"
	defer func() {
		_ = os.Remove(staged)
		_ = os.Remove(thumb)
	}()

	probe, err := u.Thumbnailer.Probe(ctx, staged)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	if err := u.Thumbnailer.Snapshot(ctx, staged, thumb, probe.DurationSeconds/2); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	var stored []string
	defer func() {
		if err == nil {
			return
		}
		for _, p := range stored {
			if rmErr := u.Store.Remove(context.WithoutCancel(ctx), p); rmErr != nil {
				u.Log.WithError(rmErr).WithField("path", p).Warn("Failed to clean up after upload failure")
			}
		}
	}()

	key := fmt.Sprintf("%d/%s", userID, uuid.NewString())
	videoPath, err := u.Store.Put(ctx, key+".mp4", staged, "video/mp4")
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}
	stored = append(stored, videoPath)

	thumbPath, err := u.Store.Put(ctx, key+".jpg", thumb, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}
	stored = append(stored, thumbPath)

	video = &models.Video{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		UploadPath:      videoPath,
		ThumbnailPath:   thumbPath,
		UploadDate:      time.Now().UTC(),
		DurationSeconds: probe.DurationSeconds,
		MediaInfo:       models.NewJSON(probe.Raw),
		UserID:          userID,
	}
	if err = u.DB.WithContext(ctx).Create(video).Error; err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	return video, nil
}

// stage copies the upload into a temp file and returns its path
func (u *VideoUploader) stage(in UploadInput) (string, error) {
	src, err := in.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(u.TempDir, "upload-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(dst, io.LimitReader(src, u.MaxBytes+1)); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return dst.Name(), nil
}
