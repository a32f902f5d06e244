package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the database, media tools and backing services
type HealthHandler struct {
	Cfg *config.Config
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// Health handles GET /health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Cfg, h.DB, requestLog(c, h.Log))
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
