package api

import (
	"errors"
	"strings"
	"time"

	"github.com/sakhi-health/sakhi/internal/db"
	"github.com/sakhi-health/sakhi/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	logger       logrus.FieldLogger
	now          func() time.Time
	loginLimiter *attemptLimiter

	repositories    *db.Repositories
	authService     *services.AuthService
	cycleService    *services.CycleService
	profileService  *services.ProfileService
	trackingService *services.TrackingService
	importService   *services.LegacyImportService
	exportService   *services.ExportService
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, cookieSecure bool, logger logrus.FieldLogger) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("secret key is required")
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(secretKey),
		location:     location,
		cookieSecure: cookieSecure,
		logger:       logger,
		now:          time.Now,
		loginLimiter: newAttemptLimiter(),
	}
	return handler.withDependencies(database), nil
}

// CycleService exposes the shared cycle service so background jobs see the
// same per-user write locks as HTTP requests.
func (handler *Handler) CycleService() *services.CycleService {
	handler.ensureDependencies()
	return handler.cycleService
}
