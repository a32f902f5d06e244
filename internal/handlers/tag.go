package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TagHandler handles tag routes
type TagHandler struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// GetTags handles GET /api/tag/get
// @Summary List tags
// @Description Every tag by name. An empty list when there are none.
// @Tags Tag
// @Produce json
// @Success 200 {array} services.TagRef
// @Router /tag/get [get]
func (h *TagHandler) GetTags(c *fiber.Ctx) error {
	tags, err := services.ListTags(c.UserContext(), h.DB)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, tags, fiber.StatusOK)
}

type tagAddRequest struct {
	Name string `json:"name"`
}

// AddTag handles POST /api/tag/add
// @Summary Create a tag
// @Tags Tag
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body tagAddRequest true "Tag"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /tag/add [post]
func (h *TagHandler) AddTag(c *fiber.Ctx) error {
	var req tagAddRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tag, err := services.CreateTag(c.UserContext(), h.DB, req.Name)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Tag created successfully!", fiber.Map{"tagId": tag.ID})
}

type tagAttachRequest struct {
	VideoID types.FlexID                 `json:"videoId"`
	TagIDs  types.FlexList[types.FlexID] `json:"tagIds"`
}

// AttachTags handles POST /api/tag/attach
// @Summary Replace a video's tags
// @Description The video ends up with exactly the given existing tags. Owner or admin only.
// @Tags Tag
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body tagAttachRequest true "Video and tag ids"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tag/attach [post]
func (h *TagHandler) AttachTags(c *fiber.Ctx) error {
	var req tagAttachRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.VideoID, "videoId"); err != nil {
		return err
	}

	ctx := c.UserContext()
	owner, err := services.VideoOwner(ctx, h.DB, req.VideoID.Uint())
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	if err := requireOwnerOrAdmin(c, h.DB, owner); err != nil {
		return err
	}

	attached, err := services.AttachTags(ctx, h.DB, req.VideoID.Uint(), flexIDs(req.TagIDs))
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Tags attached successfully.", fiber.Map{"tagIds": attached})
}
