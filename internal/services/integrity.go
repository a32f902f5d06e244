// integrity.go
//
// A video hosting service for users, videos, comments, tags and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of videohost.
// videohost is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// videohost is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with videohost.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/metrics"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
)

// deleteStep is one ordered statement of a deletion plan
type deleteStep struct {
	name string
	run  func(tx *gorm.DB) error
}

// deletePlan removes media files first, then runs its steps in order. Both
// happen inside the caller's transaction, so a failure anywhere rolls back
// every row. Files already removed stay removed.
type deletePlan struct {
	entity string
	files  []string
	steps  []deleteStep
}

func (p *deletePlan) execute(ctx context.Context, tx *gorm.DB, store media.Store) error {
	for _, f := range p.files {
		if err := store.Remove(ctx, f); err != nil {
			return types.Internal("Failed to delete media files.", fmt.Errorf("%s delete: %w", p.entity, err))
		}
		metrics.MediaFilesRemoved.Inc()
	}
	for _, s := range p.steps {
		if err := s.run(tx); err != nil {
			return fmt.Errorf("%s delete, %s: %w", p.entity, s.name, err)
		}
	}
	return nil
}

func runPlan(ctx context.Context, db *gorm.DB, store media.Store, build func(tx *gorm.DB) (*deletePlan, error)) error {
	var entity string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := build(tx)
		if err != nil {
			return err
		}
		entity = plan.entity
		return plan.execute(ctx, tx, store)
	})
	if err != nil {
		return err
	}
	metrics.CascadeDeletes.WithLabelValues(entity).Inc()
	return nil
}

func mediaFiles(videos []models.Video) []string {
	files := make([]string, 0, len(videos)*2)
	for _, v := range videos {
		files = append(files, v.UploadPath, v.ThumbnailPath)
	}
	return files
}

func videoIDs(videos []models.Video) []uint {
	ids := make([]uint, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}

// videoDependents deletes the tag links and comments that hang off the given videos
func videoDependents(ids []uint) []deleteStep {
	if len(ids) == 0 {
		return nil
	}
	return []deleteStep{
		{"video tags", func(tx *gorm.DB) error {
			return tx.Where("video_id IN ?", ids).Delete(&models.VideoTag{}).Error
		}},
		{"video comments", func(tx *gorm.DB) error {
			return tx.Where("video_id IN ?", ids).Delete(&models.Comment{}).Error
		}},
	}
}

// DeleteUser removes a user together with their videos (files, tag links and
// comments included), every subscription naming them on either side, and the
// comments they left on other videos.
func DeleteUser(ctx context.Context, db *gorm.DB, store media.Store, userID uint) error {
	return runPlan(ctx, db, store, func(tx *gorm.DB) (*deletePlan, error) {
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.NotFound("User not found.")
			}
			return nil, err
		}

		var videos []models.Video
		if err := tx.Select("id", "upload_path", "thumbnail_path").
			Where("user_id = ?", userID).Order("id").Find(&videos).Error; err != nil {
			return nil, err
		}
		ids := videoIDs(videos)

		steps := []deleteStep{
			{"subscriptions", func(tx *gorm.DB) error {
				return tx.Where("subscriber_id = ? OR subscribed_to_id = ?", userID, userID).
					Delete(&models.Subscription{}).Error
			}},
		}
		steps = append(steps, videoDependents(ids)...)
		steps = append(steps,
			deleteStep{"videos", func(tx *gorm.DB) error {
				return tx.Where("user_id = ?", userID).Delete(&models.Video{}).Error
			}},
			deleteStep{"authored comments", func(tx *gorm.DB) error {
				return tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error
			}},
			deleteStep{"user", func(tx *gorm.DB) error {
				return tx.Delete(&models.User{}, userID).Error
			}},
		)

		return &deletePlan{entity: "user", files: mediaFiles(videos), steps: steps}, nil
	})
}

// DeleteVideo removes a video, its files, tag links and comments
func DeleteVideo(ctx context.Context, db *gorm.DB, store media.Store, videoID uint) error {
	return runPlan(ctx, db, store, func(tx *gorm.DB) (*deletePlan, error) {
		var video models.Video
		if err := tx.Select("id", "upload_path", "thumbnail_path").First(&video, videoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.NotFound("Video not found.")
			}
			return nil, err
		}

		steps := videoDependents([]uint{videoID})
		steps = append(steps, deleteStep{"video", func(tx *gorm.DB) error {
			return tx.Delete(&models.Video{}, videoID).Error
		}})

		return &deletePlan{entity: "video", files: mediaFiles([]models.Video{video}), steps: steps}, nil
	})
}

// DeleteUserVideos removes every video a user owns and keeps the account.
// It returns how many videos were deleted.
func DeleteUserVideos(ctx context.Context, db *gorm.DB, store media.Store, userID uint) (int, error) {
	var count int
	err := runPlan(ctx, db, store, func(tx *gorm.DB) (*deletePlan, error) {
		var videos []models.Video
		if err := tx.Select("id", "upload_path", "thumbnail_path").
			Where("user_id = ?", userID).Order("id").Find(&videos).Error; err != nil {
			return nil, err
		}
		count = len(videos)
		ids := videoIDs(videos)

		steps := videoDependents(ids)
		if len(ids) > 0 {
			steps = append(steps, deleteStep{"videos", func(tx *gorm.DB) error {
				return tx.Where("id IN ?", ids).Delete(&models.Video{}).Error
			}})
		}

		return &deletePlan{entity: "user videos", files: mediaFiles(videos), steps: steps}, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteTag removes a tag and every link to it
func DeleteTag(ctx context.Context, db *gorm.DB, tagID uint) error {
	return runPlan(ctx, db, nil, func(tx *gorm.DB) (*deletePlan, error) {
		var tag models.Tag
		if err := tx.Select("id").First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.NotFound("Tag not found.")
			}
			return nil, err
		}
		return &deletePlan{entity: "tag", steps: []deleteStep{
			{"video tags", func(tx *gorm.DB) error {
				return tx.Where("tag_id = ?", tagID).Delete(&models.VideoTag{}).Error
			}},
			{"tag", func(tx *gorm.DB) error {
				return tx.Delete(&models.Tag{}, tagID).Error
			}},
		}}, nil
	})
}

// deleteRow removes a single row of T by id, NotFound when nothing matched
func deleteRow[T any](ctx context.Context, db *gorm.DB, id uint, notFound string) error {
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound(notFound)
	}
	return nil
}
