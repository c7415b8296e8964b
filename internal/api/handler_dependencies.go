package api

import (
	"github.com/sakhi-health/sakhi/internal/db"
	"github.com/sakhi-health/sakhi/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.cycleService = services.NewCycleService(handler.repositories.CycleLogs, handler.repositories.Users, handler.logger)
	handler.profileService = services.NewProfileService(handler.repositories.Users, handler.cycleService)
	handler.trackingService = services.NewTrackingService(handler.repositories.DailyMetrics)
	handler.importService = services.NewLegacyImportService(handler.cycleService, handler.trackingService, handler.logger)
	handler.exportService = services.NewExportService(handler.cycleService, handler.trackingService)
	return handler
}

// ensureDependencies fills in services for handlers built as struct literals
// in tests.
func (handler *Handler) ensureDependencies() {
	if handler.logger == nil {
		handler.logger = logrus.StandardLogger()
	}
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}

	if handler.authService == nil {
		handler.authService = services.NewAuthService(handler.repositories.Users)
	}
	if handler.cycleService == nil {
		handler.cycleService = services.NewCycleService(handler.repositories.CycleLogs, handler.repositories.Users, handler.logger)
	}
	if handler.profileService == nil {
		handler.profileService = services.NewProfileService(handler.repositories.Users, handler.cycleService)
	}
	if handler.trackingService == nil {
		handler.trackingService = services.NewTrackingService(handler.repositories.DailyMetrics)
	}
	if handler.importService == nil {
		handler.importService = services.NewLegacyImportService(handler.cycleService, handler.trackingService, handler.logger)
	}
	if handler.exportService == nil {
		handler.exportService = services.NewExportService(handler.cycleService, handler.trackingService)
	}
	if handler.loginLimiter == nil {
		handler.loginLimiter = newAttemptLimiter()
	}
}
