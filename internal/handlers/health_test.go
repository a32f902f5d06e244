package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/handlers"
	"github.com/localnerve/videohost/internal/logger"
	"github.com/localnerve/videohost/internal/services"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRoute(t *testing.T) {
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "memory", FFmpegPath: "sh", FFprobePath: "sh"}
	app := fiber.New()
	handlers.RegisterHealth(app, handlers.Deps{Cfg: cfg, DB: th.NewTestDB(t), Log: logger.Discard()})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	th.AssertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "healthy", decode[services.HealthCheckResult](t, resp).Status)

	cfg.FFmpegPath = "videohost-no-such-tool"
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	th.AssertStatus(t, resp, http.StatusServiceUnavailable)
}
