package services

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Media        string            `json:"media"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(key string, err error, message string) {
	r.Status = "unhealthy"
	r.Details[key] = err.Error()
	if r.ErrorMessage == "" {
		r.ErrorMessage = message
	} else {
		r.ErrorMessage += "; " + message
	}
}

// HealthCheck checks the database, the media tools and every configured
// backing service
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database_error", err, fmt.Sprintf("Database connection error: %v", err))
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database_ping_error", err, fmt.Sprintf("Database ping failed: %v", err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	result.Media = "ok"
	for _, tool := range []string{cfg.FFmpegPath, cfg.FFprobePath} {
		if _, err := exec.LookPath(tool); err != nil {
			result.Media = "missing"
			result.fail("media_tool_"+tool, err, fmt.Sprintf("Media tool %s not found", tool))
		}
	}

	deps := map[string]string{}
	if cfg.MediaBackend == "minio" {
		deps["minio"] = cfg.MinioEndpoint
	}
	if cfg.RedisAddr != "" {
		deps["redis"] = cfg.RedisAddr
	}
	if len(cfg.KafkaBrokers) > 0 {
		deps["kafka"] = cfg.KafkaBrokers[0]
	}
	for name, addr := range deps {
		if err := utils.PingAddress(ctx, addr, utils.DefaultPingTimeout); err != nil {
			result.fail(name+"_error", err, fmt.Sprintf("%s ping failed: %v", strings.ToUpper(name[:1])+name[1:], err))
			continue
		}
		result.Details[name] = "ok"
	}

	if result.Status == "healthy" {
		log.Debug("Health check passed")
	} else {
		log.WithField("error", result.ErrorMessage).Warn("Health check failed")
	}
	return result
}
