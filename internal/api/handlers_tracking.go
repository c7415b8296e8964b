package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/sakhi-health/sakhi/internal/models"
	"github.com/sakhi-health/sakhi/internal/services"
)

type trackingResponse struct {
	Date            string   `json:"date"`
	WaterGlasses    *int     `json:"water_glasses"`
	SleepHours      *float64 `json:"sleep_hours"`
	ExerciseMinutes *int     `json:"exercise_minutes"`
	Mood            *string  `json:"mood"`
	Symptoms        []string `json:"symptoms"`
	Notes           string   `json:"notes"`
}

func newTrackingResponse(entry models.DailyMetric) trackingResponse {
	symptoms := entry.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return trackingResponse{
		Date:            entry.Date,
		WaterGlasses:    entry.WaterGlasses,
		SleepHours:      entry.SleepHours,
		ExerciseMinutes: entry.ExerciseMinutes,
		Mood:            entry.Mood,
		Symptoms:        symptoms,
		Notes:           entry.Notes,
	}
}

func (handler *Handler) GetTracking(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := dateParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	handler.ensureDependencies()
	entry, err := handler.trackingService.Get(user.ID, day)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load tracking")
	}
	return c.JSON(newTrackingResponse(entry))
}

// UpdateTracking merges the request into the stored entry. Only JSON bodies
// are accepted so an omitted field can be told apart from an empty one.
func (handler *Handler) UpdateTracking(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := dateParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	input := services.TrackingInput{}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	entry, err := handler.trackingService.Save(user.ID, day, input)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to save tracking")
	}
	return c.JSON(newTrackingResponse(entry))
}

func (handler *Handler) ListTracking(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	from, to, err := services.ParseTrackingRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid range")
	}

	handler.ensureDependencies()
	entries, err := handler.trackingService.List(user.ID, from, to)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load tracking")
	}
	response := make([]trackingResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, newTrackingResponse(entry))
	}
	return c.JSON(fiber.Map{"entries": response})
}
