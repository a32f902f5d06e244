// video.go
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

package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// VideoHandler handles video routes
type VideoHandler struct {
	DB       *gorm.DB
	Uploader *services.VideoUploader
	Store    media.Store
	Events   messaging.Publisher
	Log      logrus.FieldLogger
}

// GetVideo handles GET /api/video/get?id=
// @Summary Get a video
// @Description Get one video with its owner, tags and rendered description
// @Tags Video
// @Produce json
// @Param id query int true "Video ID"
// @Success 200 {object} services.VideoDetail
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /video/get [get]
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	id, err := requiredID(c, "id")
	if err != nil {
		return err
	}
	video, err := services.GetVideo(c.UserContext(), h.DB, id)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, video, fiber.StatusOK)
}

// GetVideos handles GET /api/video/get-many
// @Summary List videos
// @Description Filter, sort and page videos. Every filter must match.
// @Tags Video
// @Produce json
// @Param searchTerm query string false "Case-insensitive name substring"
// @Param tagIds query string false "Tag ids, as a JSON array or comma separated. A video must carry all of them."
// @Param userId query int false "Owner id"
// @Param subscriberId query int false "Only videos by users this user subscribes to"
// @Param orderBy query string false "views, or anything else for newest first"
// @Param skip query int false "Rows to skip" default(0)
// @Param take query int false "Rows to return" default(8)
// @Success 200 {array} services.VideoSummary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /video/get-many [get]
func (h *VideoHandler) GetVideos(c *fiber.Ctx) error {
	page, err := queryPage(c, services.DefaultVideoTake)
	if err != nil {
		return err
	}
	tagIDs, err := types.ParseIDList(c.Query("tagIds"))
	if err != nil {
		return types.BadRequest("Query parameter 'tagIds' must be a list of ids.")
	}
	userID, err := queryUint(c, "userId")
	if err != nil {
		return err
	}
	subscriberID, err := queryUint(c, "subscriberId")
	if err != nil {
		return err
	}

	videos, err := services.ListVideos(c.UserContext(), h.DB, services.VideoFilter{
		SearchTerm:   c.Query("searchTerm"),
		TagIDs:       tagIDs,
		UserID:       userID,
		SubscriberID: subscriberID,
		OrderBy:      c.Query("orderBy"),
	}, page)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, videos, fiber.StatusOK)
}

// Upload handles POST /api/video/upload
// @Summary Upload a video
// @Description Upload an MP4 with a name and optional description. A thumbnail is taken from the middle frame.
// @Tags Video
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Video name"
// @Param description formData string false "Markdown description"
// @Param videoFile formData file true "MP4 file"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /video/upload [post]
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	in := services.UploadInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}
	if fh, err := c.FormFile("videoFile"); err == nil {
		in.Filename = fh.Filename
		in.ContentType = fh.Header.Get(fiber.HeaderContentType)
		in.Size = fh.Size
		in.Open = func() (io.ReadCloser, error) { return openPart(fh) }
	}

	log := requestLog(c, h.Log)
	video, err := h.Uploader.Upload(c.UserContext(), userID, in)
	if err != nil {
		return utils.HandleError(c, err, log)
	}

	publish(c.UserContext(), h.Events, log, messaging.EventVideoUploaded, idKey(userID), messaging.VideoUploadedPayload{
		VideoID:         video.ID,
		UserID:          userID,
		Name:            video.Name,
		UploadPath:      video.UploadPath,
		ThumbnailPath:   video.ThumbnailPath,
		DurationSeconds: video.DurationSeconds,
		Size:            in.Size,
	})
	log.WithFields(logrus.Fields{"videoId": video.ID, "userId": userID}).Info("Video uploaded")

	return utils.MutationSuccessResponse(c, "The video has been uploaded successfully!", fiber.Map{"videoId": video.ID})
}

func openPart(fh *multipart.FileHeader) (io.ReadCloser, error) {
	return fh.Open()
}

type videoIDRequest struct {
	ID types.FlexID `json:"id"`
}

// Increment handles POST /api/video/increment
// @Summary Count a view
// @Tags Video
// @Accept json
// @Produce json
// @Param request body videoIDRequest true "Video id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /video/increment [post]
func (h *VideoHandler) Increment(c *fiber.Ctx) error {
	var req videoIDRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	if err := services.IncrementViews(c.UserContext(), h.DB, req.ID.Uint()); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "View counted.", nil)
}

type videoUpdateRequest struct {
	ID          types.FlexID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
}

// Update handles PUT /api/video/update
// @Summary Update a video
// @Description Rename a video. The description changes only when a non-blank one is sent. Owner or admin only.
// @Tags Video
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body videoUpdateRequest true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /video/update [put]
func (h *VideoHandler) Update(c *fiber.Ctx) error {
	var req videoUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}

	ctx := c.UserContext()
	owner, err := services.VideoOwner(ctx, h.DB, req.ID.Uint())
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	if err := requireOwnerOrAdmin(c, h.DB, owner); err != nil {
		return err
	}
	if err := services.UpdateVideo(ctx, h.DB, req.ID.Uint(), req.Name, req.Description); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "The video has been updated successfully!", nil)
}

// Delete handles DELETE /api/video/delete?id=
// @Summary Delete a video
// @Description Delete a video with its files, tag links and comments. Owner or admin only.
// @Tags Video
// @Produce json
// @Security BearerAuth
// @Param id query int true "Video ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /video/delete [delete]
func (h *VideoHandler) Delete(c *fiber.Ctx) error {
	id, err := requiredID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	log := requestLog(c, h.Log)
	owner, err := services.VideoOwner(ctx, h.DB, id)
	if err != nil {
		return utils.HandleError(c, err, log)
	}
	if err := requireOwnerOrAdmin(c, h.DB, owner); err != nil {
		return err
	}
	if err := services.DeleteVideo(ctx, h.DB, h.Store, id); err != nil {
		return utils.HandleError(c, err, log)
	}

	publish(ctx, h.Events, log, messaging.EventVideoDeleted, idKey(owner), messaging.VideoDeletedPayload{VideoID: id})
	return utils.MutationSuccessResponse(c, "Video deleted successfully.", nil)
}

// DeleteUserVideos handles DELETE /api/video/delete-user-videos
// @Summary Delete all of the caller's videos
// @Tags Video
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /video/delete-user-videos [delete]
func (h *VideoHandler) DeleteUserVideos(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	n, err := services.DeleteUserVideos(c.UserContext(), h.DB, h.Store, userID)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "All videos of the user with the Id "+idKey(userID)+" have been deleted.", fiber.Map{"deleted": n})
}
