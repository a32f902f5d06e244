package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"gorm.io/gorm"
)

// Request locals set by the auth middleware
const (
	LocalUserID = "userID"
	LocalRole   = "role"
	LocalClaims = "claims"
)

// AuthUser requires a valid bearer token for an account that still exists.
// Tokens of a deleted account stop working at once.
func AuthUser(tokens *services.TokenService, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, tokens); err != nil {
			return err
		}

		userID, _ := UserID(c)
		user, err := services.FindUser(c.UserContext(), db, userID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.Unauthorized("Account no longer exists.").WithType("authorization.user")
			}
			return err
		}
		c.Locals(LocalRole, user.Role)
		return c.Next()
	}
}

// AuthAdmin requires a valid bearer token whose user currently holds the Admin
// role. The role is read from the store, so a demotion applies at once.
func AuthAdmin(tokens *services.TokenService, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, tokens); err != nil {
			return err
		}

		userID, _ := UserID(c)
		user, err := services.FindUser(c.UserContext(), db, userID)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.Forbidden("Administrator role required.").WithType("authorization.admin")
			}
			return err
		}
		if !user.IsAdmin() {
			return types.Forbidden("Administrator role required.").WithType("authorization.admin")
		}
		c.Locals(LocalRole, user.Role)
		return c.Next()
	}
}

// authenticate validates the bearer token and stores its claims in locals
func authenticate(c *fiber.Ctx, tokens *services.TokenService) error {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return types.Unauthorized("Bearer token required.").WithType("authorization.user")
	}

	claims, err := tokens.Validate(c.UserContext(), strings.TrimSpace(raw))
	if err != nil {
		var ce *types.CustomError
		if errors.As(err, &ce) && ce.Code == fiber.StatusUnauthorized {
			return ce.WithType("authorization.user")
		}
		return err
	}

	userID, _ := claims.UserID()
	c.Locals(LocalUserID, userID)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalClaims, claims)
	return nil
}

// UserID returns the authenticated user id
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// Role returns the authenticated user's role
func Role(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(LocalRole).(models.Role)
	return role
}

// Claims returns the validated token claims
func Claims(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(LocalClaims).(*services.Claims)
	return claims
}
