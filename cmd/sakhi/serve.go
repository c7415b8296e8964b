package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sakhi-health/sakhi/internal/api"
	"github.com/sakhi-health/sakhi/internal/config"
	"github.com/sakhi-health/sakhi/internal/db"
	"github.com/sakhi-health/sakhi/internal/logging"
	"github.com/sakhi-health/sakhi/internal/metrics"
	"github.com/sakhi-health/sakhi/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	time.Local = cfg.Location

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	app, handler, err := buildApp(cfg, database, logger)
	if err != nil {
		return err
	}

	digest := services.NewDigestService(db.NewUserRepository(database), handler.CycleService(), cfg.Location, logger)
	lifecycleCtx, cancelLifecycle := context.WithCancel(cmd.Context())
	defer cancelLifecycle()
	if err := digest.Start(lifecycleCtx, cfg.DigestCron); err != nil {
		return err
	}

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		digest.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port": cfg.Port,
		"db":   cfg.DBPath,
		"tz":   cfg.Location.String(),
	}).Info("sakhi listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func buildApp(cfg *config.Config, database *gorm.DB, logger *logrus.Logger) (*fiber.App, *api.Handler, error) {
	handler, err := api.NewHandler(database, cfg.SecretKey, cfg.Location, cfg.CookieSecure, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Sakhi",
		DisableStartupMessage: true,
		ErrorHandler:          jsonErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		Output: logger.Writer(),
	}))
	app.Use(compress.New())

	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, handler, nil
}

func jsonErrorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal error"
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			logger.WithError(err).WithField("path", c.Path()).Error("request failed")
		}
		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}
