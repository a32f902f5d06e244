package services

import (
	"context"
	"errors"
	"strings"

	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
)

// ListTags returns every tag by name. No tags is an empty list, not an error.
func ListTags(ctx context.Context, db *gorm.DB) ([]TagRef, error) {
	var tags []models.Tag
	if err := quiet(db).WithContext(ctx).Order("name ASC").Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	out := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagRef{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

// CreateTag adds a tag. Names are unique and case sensitive.
func CreateTag(ctx context.Context, db *gorm.DB, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.BadRequest("Tag name is required.")
	}

	tag := &models.Tag{Name: name}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTagNameFree(tx, name, 0); err != nil {
			return err
		}
		return tx.Create(tag).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, tagExists(name)
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// UpdateTag renames a tag
func UpdateTag(ctx context.Context, db *gorm.DB, tagID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.BadRequest("Tag name is required.")
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("Tag not found.")
			}
			return err
		}
		if err := ensureTagNameFree(tx, name, tagID); err != nil {
			return err
		}
		return tx.Model(&tag).Update("name", name).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return tagExists(name)
	}
	return err
}

func tagExists(name string) error {
	return types.Conflict("A tag named '" + name + "' already exists.")
}

// ensureTagNameFree is the friendly check; the unique index catches races
func ensureTagNameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Tag{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return tagExists(name)
	}
	return nil
}

// AttachTags replaces the tag set of a video. Unknown tag ids are ignored and
// duplicates collapse. It returns the ids actually attached.
func AttachTags(ctx context.Context, db *gorm.DB, videoID uint, tagIDs []uint) ([]uint, error) {
	var attached []uint
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		attached, err = replaceVideoTags(tx, videoID, tagIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return attached, nil
}

// replaceVideoTags runs inside the caller's transaction
func replaceVideoTags(tx *gorm.DB, videoID uint, tagIDs []uint) ([]uint, error) {
	var count int64
	if err := tx.Model(&models.Video{}).Where("id = ?", videoID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.NotFound("Video not found.")
	}

	if err := tx.Where("video_id = ?", videoID).Delete(&models.VideoTag{}).Error; err != nil {
		return nil, err
	}

	ids := types.UniqueIDs(tagIDs)
	if len(ids) == 0 {
		return []uint{}, nil
	}

	var existing []uint
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Order("id").Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return []uint{}, nil
	}

	links := make([]models.VideoTag, len(existing))
	for i, id := range existing {
		links[i] = models.VideoTag{VideoID: videoID, TagID: id}
	}
	if err := tx.Create(&links).Error; err != nil {
		return nil, err
	}
	return existing, nil
}
