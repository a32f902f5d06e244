// main.go
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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/database"
	"github.com/localnerve/videohost/internal/handlers"
	"github.com/localnerve/videohost/internal/logger"
	"github.com/localnerve/videohost/internal/media"
	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/middleware"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/utils"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/videohost/docs/api" // Swagger docs
)

// @title VideoHost API
// @version 1.0.0
// @description Video hosting service: uploads, tags, comments and subscriptions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/videohost
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.Seed {
		sd, err := database.LoadSeedData()
		if err != nil {
			log.WithError(err).Fatal("Failed to load seed data")
		}
		if _, err := database.Seed(db, sd, log); err != nil {
			log.WithError(err).Fatal("Failed to seed database")
		}
	}

	store, err := media.NewStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open media store")
	}

	var revoker services.Revoker
	if cfg.RedisAddr != "" {
		client := services.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		revoker = services.NewRedisRevoker(client)
		log.WithField("addr", cfg.RedisAddr).Info("Token revocations kept in redis")
	} else {
		revoker = services.NewMemoryRevoker()
	}
	tokens := services.NewTokenService(services.TokenOptions{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Expiry:   cfg.JWTExpiry,
	}, revoker)

	var events messaging.Publisher = messaging.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to kafka")
		}
		events = kp
		log.WithField("topic", cfg.KafkaTopic).Info("Publishing domain events")
	}
	defer events.Close()

	deps := handlers.Deps{
		Cfg:   cfg,
		DB:    db,
		Store: store,
		Uploader: &services.VideoUploader{
			DB:          db,
			Store:       store,
			Thumbnailer: media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath),
			MaxBytes:    cfg.MaxUploadBytes,
			TempDir:     os.TempDir(),
			Log:         log,
		},
		Tokens: tokens,
		Events: events,
		Log:    log,
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.NewErrorHandler(deps),
		BodyLimit:    handlers.BodyLimit(cfg.MaxUploadBytes),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New(logger.ServiceName)
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterHealth(app, deps)

	if cfg.MediaBackend == "local" {
		app.Static(media.LocalURLPrefix, cfg.UploadDir)
	}

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	handlers.RegisterRoutes(api, deps)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, "notfound")
	})

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(30 * time.Second)
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}

	log.Info("Server stopped")
}
