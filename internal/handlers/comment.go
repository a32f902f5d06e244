package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CommentHandler handles comment routes
type CommentHandler struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// GetComments handles GET /api/comment/get
// @Summary List comments
// @Description Filter and page comments, oldest first
// @Tags Comment
// @Produce json
// @Param videoId query int false "Video id"
// @Param userId query int false "Author id"
// @Param subscriberId query int false "Only comments by users this user subscribes to"
// @Param skip query int false "Rows to skip" default(0)
// @Param take query int false "Rows to return" default(10)
// @Success 200 {array} services.CommentView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /comment/get [get]
func (h *CommentHandler) GetComments(c *fiber.Ctx) error {
	page, err := queryPage(c, services.DefaultCommentTake)
	if err != nil {
		return err
	}
	var f services.CommentFilter
	if f.VideoID, err = queryUint(c, "videoId"); err != nil {
		return err
	}
	if f.UserID, err = queryUint(c, "userId"); err != nil {
		return err
	}
	if f.SubscriberID, err = queryUint(c, "subscriberId"); err != nil {
		return err
	}

	comments, err := services.ListComments(c.UserContext(), h.DB, f, page)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, comments, fiber.StatusOK)
}

type commentAddRequest struct {
	Content string       `json:"content"`
	VideoID types.FlexID `json:"videoId"`
}

// AddComment handles POST /api/comment/add
// @Summary Comment on a video
// @Description The author is always the authenticated caller
// @Tags Comment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body commentAddRequest true "Comment"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /comment/add [post]
func (h *CommentHandler) AddComment(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req commentAddRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.VideoID, "videoId"); err != nil {
		return err
	}

	comment, err := services.AddComment(c.UserContext(), h.DB, userID, req.VideoID.Uint(), req.Content)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Comment added successfully!", fiber.Map{"commentId": comment.ID})
}

type commentUpdateRequest struct {
	ID      types.FlexID `json:"id"`
	Content string       `json:"content"`
}

// UpdateComment handles PUT /api/comment/update
// @Summary Edit a comment
// @Description Author or admin only
// @Tags Comment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body commentUpdateRequest true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /comment/update [put]
func (h *CommentHandler) UpdateComment(c *fiber.Ctx) error {
	var req commentUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	if err := h.authorize(c, req.ID.Uint()); err != nil {
		return err
	}
	if err := services.UpdateComment(c.UserContext(), h.DB, req.ID.Uint(), req.Content); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Comment updated successfully!", nil)
}

// DeleteComment handles DELETE /api/comment/delete?id=
// @Summary Delete a comment
// @Description Author or admin only
// @Tags Comment
// @Produce json
// @Security BearerAuth
// @Param id query int true "Comment ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /comment/delete [delete]
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := requiredID(c, "id")
	if err != nil {
		return err
	}
	if err := h.authorize(c, id); err != nil {
		return err
	}
	if err := services.DeleteComment(c.UserContext(), h.DB, id); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Comment deleted successfully.", nil)
}

// authorize loads the comment and checks the caller may change it
func (h *CommentHandler) authorize(c *fiber.Ctx, commentID uint) error {
	comment, err := services.FindComment(c.UserContext(), h.DB, commentID)
	if err != nil {
		return err
	}
	return requireOwnerOrAdmin(c, h.DB, comment.UserID)
}
