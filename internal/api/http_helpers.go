package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (handler *Handler) clock() time.Time {
	if handler.now == nil {
		return time.Now()
	}
	return handler.now()
}

// requestToday reads the optional today query parameter and falls back to
// the server-local calendar date.
func (handler *Handler) requestToday(c *fiber.Ctx) (civil.Date, error) {
	raw := strings.TrimSpace(c.Query("today"))
	if raw == "" {
		location := handler.location
		if location == nil {
			location = time.UTC
		}
		return cycle.Today(handler.clock(), location), nil
	}
	return cycle.ParseDay(raw)
}

func dateParam(c *fiber.Ctx) (civil.Date, error) {
	return cycle.ParseDay(c.Params("date"))
}

func parseBoolValue(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && value
}

// respondServiceError maps service and core sentinels to HTTP statuses.
// Unknown errors are logged and reported as 500.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, cycle.ErrInvalidDate), errors.Is(err, cycle.ErrInvalidKind), errors.Is(err, cycle.ErrInvalidRange):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCycleUserNotFound), errors.Is(err, services.ErrAuthUserNotFound):
		return apiError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, services.ErrProfileCycleLengthOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "cycle length must be between 20 and 45 days")
	case errors.Is(err, services.ErrProfilePeriodLengthOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "period length must be between 1 and 14 days")
	case errors.Is(err, services.ErrProfilePeriodLengthIncompatible):
		return apiError(c, fiber.StatusBadRequest, "period length must be shorter than cycle length")
	case errors.Is(err, services.ErrProfileLastPeriodDateInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid last period date")
	case errors.Is(err, services.ErrProfileLastPeriodDateInTheFuture):
		return apiError(c, fiber.StatusBadRequest, "last period date is in the future")
	case errors.Is(err, services.ErrTrackingWaterOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "water glasses out of range")
	case errors.Is(err, services.ErrTrackingSleepOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "sleep hours out of range")
	case errors.Is(err, services.ErrTrackingExerciseOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "exercise minutes out of range")
	case errors.Is(err, services.ErrTrackingMoodInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid mood")
	case errors.Is(err, services.ErrTrackingSymptomsInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid symptoms")
	case errors.Is(err, services.ErrTrackingRangeInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	case errors.Is(err, services.ErrLegacyImportInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid import payload")
	}

	handler.ensureDependencies()
	handler.logger.WithError(err).WithField("path", c.Path()).Error(fallback)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
