package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SubscriptionHandler handles the caller's subscriptions. Every route requires auth.
type SubscriptionHandler struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// GetSubscription handles GET /api/subscription/get?subscribedToId=
// @Summary Get the caller's subscription to a user
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Param subscribedToId query int true "Followed user id"
// @Success 200 {object} services.SubscriptionView
// @Success 204 "Not subscribed"
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /subscription/get [get]
func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	to, err := requiredID(c, "subscribedToId")
	if err != nil {
		return err
	}

	sub, err := services.GetSubscription(c.UserContext(), h.DB, userID, to)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	if sub == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return utils.SuccessResponse(c, sub, fiber.StatusOK)
}

// ListSubscriptions handles GET /api/subscription/list
// @Summary List the users the caller follows
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Rows to skip" default(0)
// @Param take query int false "Rows to return" default(10)
// @Success 200 {array} services.FollowedUser
// @Router /subscription/list [get]
func (h *SubscriptionHandler) ListSubscriptions(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	page, err := queryPage(c, services.DefaultSubscriptionTake)
	if err != nil {
		return err
	}
	list, err := services.ListSubscriptions(c.UserContext(), h.DB, userID, page)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, list, fiber.StatusOK)
}

type subscriptionAddRequest struct {
	SubscribedToID types.FlexID `json:"subscribedToId"`
}

// AddSubscription handles POST /api/subscription/add
// @Summary Subscribe to a user
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body subscriptionAddRequest true "User to follow"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /subscription/add [post]
func (h *SubscriptionHandler) AddSubscription(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req subscriptionAddRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requirePositive(req.SubscribedToID, "subscribedToId"); err != nil {
		return err
	}

	if _, err := services.Subscribe(c.UserContext(), h.DB, userID, req.SubscribedToID.Uint()); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "You have subscribed successfully!", nil)
}

// DeleteSubscription handles DELETE /api/subscription/delete?subscribedToId=
// @Summary Unsubscribe from a user
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Param subscribedToId query int true "Followed user id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /subscription/delete [delete]
func (h *SubscriptionHandler) DeleteSubscription(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	to, err := requiredID(c, "subscribedToId")
	if err != nil {
		return err
	}
	if err := services.Unsubscribe(c.UserContext(), h.DB, userID, to); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "You have unsubscribed successfully.", nil)
}
