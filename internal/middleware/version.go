package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/types"
)

// DefaultAPIVersion is assumed when a client sends no X-Api-Version header
const DefaultAPIVersion = "1.0.0"

// LocalAPIVersion is the locals key holding the negotiated version
const LocalAPIVersion = "apiVersion"

// VersionMiddleware parses the X-Api-Version header, stores it in context and
// echoes the served version back. Only major version 1 is served.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := strings.TrimSpace(c.Get("X-Api-Version", DefaultAPIVersion))

		switch version {
		case "", "1", "1.0":
			version = DefaultAPIVersion
		}
		if major, _, _ := strings.Cut(version, "."); major != "1" {
			return types.BadRequest("Unsupported API version '" + version + "'.").WithType("version")
		}

		c.Locals(LocalAPIVersion, version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}

// APIVersion returns the version negotiated for the request
func APIVersion(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalAPIVersion).(string); ok {
		return v
	}
	return DefaultAPIVersion
}
