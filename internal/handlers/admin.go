package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves the admin dispatcher. Every route sits behind AuthAdmin.
type AdminHandler struct {
	Admin  *services.Admin
	Events messaging.Publisher
	Log    logrus.FieldLogger
}

func entityKind(c *fiber.Ctx) (services.EntityKind, error) {
	return services.ParseEntityKind(c.Query("entityType"))
}

// GetEntity handles GET /api/admin/get-entity?entityType=&id=
// @Summary Get one entity of any kind
// @Description entityType is one of tag, video, comment, user or subscription, singular or plural.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param entityType query string true "Entity kind"
// @Param id query int true "Entity id"
// @Success 200 {object} any
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/get-entity [get]
func (h *AdminHandler) GetEntity(c *fiber.Ctx) error {
	kind, err := entityKind(c)
	if err != nil {
		return err
	}
	id, err := requiredID(c, "id")
	if err != nil {
		return err
	}
	entity, err := h.Admin.GetEntity(c.UserContext(), kind, id)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, entity, fiber.StatusOK)
}

// GetEntities handles GET /api/admin/get-entities?entityType=&skip=&take=
// @Summary List entities of any kind
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param entityType query string true "Entity kind"
// @Param skip query int false "Rows to skip" default(0)
// @Param take query int false "Rows to return" default(10)
// @Success 200 {array} any
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /admin/get-entities [get]
func (h *AdminHandler) GetEntities(c *fiber.Ctx) error {
	kind, err := entityKind(c)
	if err != nil {
		return err
	}
	page, err := queryPage(c, services.DefaultAdminTake)
	if err != nil {
		return err
	}
	list, err := h.Admin.ListEntities(c.UserContext(), kind, page)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, list, fiber.StatusOK)
}

// DeleteEntity handles DELETE /api/admin/delete-entity?entityType=&id=
// @Summary Delete an entity of any kind
// @Description Users and videos are removed with everything that depends on them, media files included.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param entityType query string true "Entity kind"
// @Param id query int true "Entity id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/delete-entity [delete]
func (h *AdminHandler) DeleteEntity(c *fiber.Ctx) error {
	kind, err := entityKind(c)
	if err != nil {
		return err
	}
	id, err := requiredID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Admin.DeleteEntity(c.UserContext(), kind, id); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}

	switch kind {
	case services.EntityUser:
		publish(c.UserContext(), h.Events, requestLog(c, h.Log), messaging.EventUserDeleted, idKey(id), messaging.UserDeletedPayload{UserID: id})
	case services.EntityVideo:
		publish(c.UserContext(), h.Events, requestLog(c, h.Log), messaging.EventVideoDeleted, idKey(id), messaging.VideoDeletedPayload{VideoID: id})
	}
	return utils.MutationSuccessResponse(c, "The "+kind.String()+" has been deleted.", nil)
}

type adminTagUpdateRequest struct {
	ID   types.FlexID `json:"id"`
	Name string       `json:"name"`
}

// UpdateTag handles PUT /api/admin/update-tag
// @Summary Rename a tag
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body adminTagUpdateRequest true "Tag"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /admin/update-tag [put]
func (h *AdminHandler) UpdateTag(c *fiber.Ctx) error {
	var req adminTagUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	if err := h.Admin.UpdateTag(c.UserContext(), req.ID.Uint(), req.Name); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Tag updated.", nil)
}

type adminVideoUpdateRequest struct {
	ID          types.FlexID                 `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	UserID      types.FlexID                 `json:"userId"`
	TagIDs      types.FlexList[types.FlexID] `json:"tagIds"`
}

// UpdateVideo handles PUT /api/admin/update-video
// @Summary Edit a video, its owner and its tags
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body adminVideoUpdateRequest true "Video"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/update-video [put]
func (h *AdminHandler) UpdateVideo(c *fiber.Ctx) error {
	var req adminVideoUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	err := h.Admin.UpdateVideo(c.UserContext(), services.AdminVideoUpdate{
		ID:          req.ID.Uint(),
		Name:        req.Name,
		Description: req.Description,
		UserID:      req.UserID.Uint(),
		TagIDs:      flexIDs(req.TagIDs),
	})
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Video updated.", nil)
}

type adminCommentUpdateRequest struct {
	ID      types.FlexID `json:"id"`
	UserID  types.FlexID `json:"userId"`
	VideoID types.FlexID `json:"videoId"`
	Content string       `json:"content"`
}

// UpdateComment handles PUT /api/admin/update-comment
// @Summary Edit or move a comment
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body adminCommentUpdateRequest true "Comment"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/update-comment [put]
func (h *AdminHandler) UpdateComment(c *fiber.Ctx) error {
	var req adminCommentUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	err := h.Admin.UpdateComment(c.UserContext(), services.AdminCommentUpdate{
		ID:      req.ID.Uint(),
		UserID:  req.UserID.Uint(),
		VideoID: req.VideoID.Uint(),
		Content: req.Content,
	})
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Comment updated.", nil)
}

type adminUserUpdateRequest struct {
	ID          types.FlexID `json:"id"`
	Role        string       `json:"role"`
	DisplayName string       `json:"displayName"`
	Email       string       `json:"email"`
	NewPassword string       `json:"newPassword"`
}

// UpdateUser handles PUT /api/admin/update-user
// @Summary Edit any account, including its role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body adminUserUpdateRequest true "User"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /admin/update-user [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req adminUserUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	err := h.Admin.UpdateUser(c.UserContext(), services.AdminUserUpdate{
		ID:          req.ID.Uint(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		NewPassword: req.NewPassword,
		Role:        req.Role,
	})
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "User updated.", nil)
}

type adminSubscriptionUpdateRequest struct {
	ID             types.FlexID `json:"id"`
	SubscriberID   types.FlexID `json:"subscriberId"`
	SubscribedToID types.FlexID `json:"subscribedToId"`
}

// UpdateSubscription handles PUT /api/admin/update-subscription
// @Summary Re-point a subscription
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body adminSubscriptionUpdateRequest true "Subscription"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /admin/update-subscription [put]
func (h *AdminHandler) UpdateSubscription(c *fiber.Ctx) error {
	var req adminSubscriptionUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.ID, "id"); err != nil {
		return err
	}
	err := h.Admin.UpdateSubscription(c.UserContext(), services.AdminSubscriptionUpdate{
		ID:             req.ID.Uint(),
		SubscriberID:   req.SubscriberID.Uint(),
		SubscribedToID: req.SubscribedToID.Uint(),
	})
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Subscription updated.", nil)
}
