package services

import (
	"context"
	"testing"

	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/logger"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()
	db := th.NewTestDB(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "memory", FFmpegPath: "sh", FFprobePath: "sh"}

	result := HealthCheck(ctx, cfg, db, logger.Discard())
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "ok", result.Media)
	assert.Empty(t, result.ErrorMessage)

	cfg.FFprobePath = "videohost-no-such-tool"
	cfg.RedisAddr = "127.0.0.1:1"
	result = HealthCheck(ctx, cfg, db, logger.Discard())
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "missing", result.Media)
	assert.Contains(t, result.Details, "redis_error")
	assert.Contains(t, result.ErrorMessage, "Redis ping failed")
}
