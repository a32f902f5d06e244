// user.go
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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/middleware"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserHandler handles accounts, sessions and public profiles
type UserHandler struct {
	DB     *gorm.DB
	Tokens *services.TokenService
	Store  media.Store
	Events messaging.Publisher
	Log    logrus.FieldLogger
}

// GetUser handles GET /api/user/get?userId=
// @Summary Get a public profile
// @Tags User
// @Produce json
// @Param userId query int true "User id"
// @Success 200 {object} services.UserProfile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/get [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := requiredID(c, "userId")
	if err != nil {
		return err
	}
	profile, err := services.GetUserProfile(c.UserContext(), h.DB, id)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// Register handles POST /api/user/register
// @Summary Create an account
// @Description New accounts get the User role.
// @Tags User
// @Accept json
// @Produce json
// @Param request body services.RegisterInput true "Account"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /user/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := services.Register(c.UserContext(), h.DB, req)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}

	publish(c.UserContext(), h.Events, requestLog(c, h.Log), messaging.EventUserRegistered, idKey(user.ID), messaging.UserRegisteredPayload{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
	return utils.MutationSuccessResponse(c, "Registration successful!", fiber.Map{"userId": user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string               `json:"token"`
	User      services.AccountView `json:"user"`
	Role      models.Role          `json:"role"`
	ExpiresAt time.Time            `json:"expiresAt"`
	Message   string               `json:"message"`
}

// Login handles POST /api/user/login
// @Summary Sign in and receive a bearer token
// @Tags User
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := services.Authenticate(c.UserContext(), h.DB, req.Email, req.Password)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}

	token, expires, err := h.Tokens.Issue(user)
	if err != nil {
		return utils.HandleError(c, types.Internal("Failed to issue token.", err), requestLog(c, h.Log))
	}
	account, err := services.GetAccount(c.UserContext(), h.DB, user.ID)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}

	return c.JSON(LoginResponse{
		Token:     token,
		User:      *account,
		Role:      user.Role,
		ExpiresAt: expires,
		Message:   "Login successful!",
	})
}

// Logout handles POST /api/user/logout
// @Summary Revoke the current bearer token
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /user/logout [post]
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return types.Unauthorized("Bearer token required.")
	}
	if err := h.Tokens.Revoke(c.UserContext(), claims); err != nil {
		return utils.HandleError(c, types.Internal("Failed to log out.", err), requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "You are now logged out.", nil)
}

// Me handles GET /api/user/me
// @Summary Get the caller's account
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.AccountView
// @Router /user/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	account, err := services.GetAccount(c.UserContext(), h.DB, userID)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.SuccessResponse(c, account, fiber.StatusOK)
}

// UpdateMe handles PUT /api/user/update
// @Summary Update the caller's account
// @Description A new password requires the current one.
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AccountUpdate true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /user/update [put]
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req services.AccountUpdate
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := services.UpdateAccount(c.UserContext(), h.DB, userID, req)
	if err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	return utils.MutationSuccessResponse(c, "Account updated.", fiber.Map{"user": account})
}

// DeleteMe handles DELETE /api/user/delete
// @Summary Delete the caller's account
// @Description Removes the account with its videos, media files, comments and subscriptions.
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/delete [delete]
func (h *UserHandler) DeleteMe(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	if err := services.DeleteUser(c.UserContext(), h.DB, h.Store, userID); err != nil {
		return utils.HandleError(c, err, requestLog(c, h.Log))
	}
	if claims := middleware.Claims(c); claims != nil {
		if err := h.Tokens.Revoke(c.UserContext(), claims); err != nil {
			requestLog(c, h.Log).WithError(err).Warn("Failed to revoke token of deleted account")
		}
	}

	publish(c.UserContext(), h.Events, requestLog(c, h.Log), messaging.EventUserDeleted, idKey(userID), messaging.UserDeletedPayload{UserID: userID})
	return utils.MutationSuccessResponse(c, "Your account has been deleted.", nil)
}
