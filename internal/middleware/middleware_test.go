package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/middleware"
	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/services"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTokens() *services.TokenService {
	return services.NewTokenService(services.TokenOptions{
		Secret:   "middleware-test-secret",
		Issuer:   "videohost",
		Audience: "videohost-client",
		Expiry:   time.Hour,
	}, nil)
}

func newApp(tokens *services.TokenService, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.NewErrorHandler(nil)})
	app.Use(middleware.VersionMiddleware())
	app.Get("/user", middleware.AuthUser(tokens, db), func(c *fiber.Ctx) error {
		id, _ := middleware.UserID(c)
		return c.JSON(fiber.Map{"id": id, "role": middleware.Role(c), "jti": middleware.Claims(c).ID})
	})
	app.Get("/admin", middleware.AuthAdmin(tokens, db), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func bearer(t *testing.T, tokens *services.TokenService, u *models.User) string {
	t.Helper()
	raw, _, err := tokens.Issue(u)
	require.NoError(t, err)
	return "Bearer " + raw
}

func TestAuthUser(t *testing.T) {
	db := th.NewTestDB(t)
	tokens := newTokens()
	app := newApp(tokens, db)
	alice := th.CreateUser(t, db, "alice", models.RoleUser)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"valid", bearer(t, tokens, alice), fiber.StatusOK},
		{"lowercase scheme", "bearer " + bearer(t, tokens, alice)[len("Bearer "):], fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			th.AssertStatus(t, resp, tt.status)
			assert.Equal(t, middleware.DefaultAPIVersion, resp.Header.Get("X-Api-Version"))
		})
	}

	req := httptest.NewRequest("GET", "/user", nil)
	req.Header.Set("Authorization", bearer(t, tokens, alice))
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body map[string]any
	th.ParseJSON(t, resp, &body)
	assert.EqualValues(t, alice.ID, body["id"])
	assert.Equal(t, "User", body["role"])
	assert.NotEmpty(t, body["jti"])
}

func TestAuthUserDeletedAccount(t *testing.T) {
	db := th.NewTestDB(t)
	tokens := newTokens()
	app := newApp(tokens, db)
	alice := th.CreateUser(t, db, "alice", models.RoleUser)
	token := bearer(t, tokens, alice)

	require.NoError(t, db.Delete(&models.User{}, alice.ID).Error)

	req := httptest.NewRequest("GET", "/user", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	th.AssertStatus(t, resp, fiber.StatusUnauthorized)
	var body map[string]any
	th.ParseJSON(t, resp, &body)
	assert.Equal(t, "Account no longer exists.", body["message"])
	assert.Equal(t, "authorization.user", body["type"])
}

func TestAuthUnauthorizedEnvelope(t *testing.T) {
	app := newApp(newTokens(), th.NewTestDB(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	var body map[string]any
	th.ParseJSON(t, resp, &body)
	assert.Equal(t, false, body["ok"])
	assert.EqualValues(t, 401, body["status"])
	assert.Equal(t, "authorization.user", body["type"])
	assert.Equal(t, "/user", body["url"])
}

func TestAuthAdmin(t *testing.T) {
	db := th.NewTestDB(t)
	tokens := newTokens()
	app := newApp(tokens, db)
	admin := th.CreateUser(t, db, "root", models.RoleAdmin)
	user := th.CreateUser(t, db, "alice", models.RoleUser)

	call := func(header string) int {
		req := httptest.NewRequest("GET", "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	adminToken := bearer(t, tokens, admin)
	assert.Equal(t, fiber.StatusNoContent, call(adminToken))
	assert.Equal(t, fiber.StatusForbidden, call(bearer(t, tokens, user)))
	assert.Equal(t, fiber.StatusUnauthorized, call(""))

	// a token minted before a demotion no longer opens admin routes
	require.NoError(t, db.Model(admin).Update("role", models.RoleUser).Error)
	assert.Equal(t, fiber.StatusForbidden, call(adminToken))

	// nor does one for a deleted user
	require.NoError(t, db.Delete(&models.User{}, admin.ID).Error)
	assert.Equal(t, fiber.StatusForbidden, call(adminToken))
}

func TestVersionAlias(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: utils.NewErrorHandler(nil)})
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(middleware.APIVersion(c)) })

	tests := []struct {
		header  string
		status  int
		version string
	}{
		{"", fiber.StatusOK, "1.0.0"},
		{"1.0", fiber.StatusOK, "1.0.0"},
		{"1", fiber.StatusOK, "1.0.0"},
		{"1.2.0", fiber.StatusOK, "1.2.0"},
		{"2.0.0", fiber.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run("header "+tt.header, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Api-Version", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			th.AssertStatus(t, resp, tt.status)
			assert.Equal(t, tt.version, resp.Header.Get("X-Api-Version"))
		})
	}
}
