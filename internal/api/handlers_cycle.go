package api

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"github.com/sakhi-health/sakhi/internal/cycle"
)

const (
	stateStatusOK               = "ok"
	stateStatusInsufficientData = "insufficient_data"
)

type cycleStateResponse struct {
	Status string            `json:"status"`
	State  *cycle.CycleState `json:"state,omitempty"`
}

type recordEventInput struct {
	Kind string `json:"kind" form:"kind"`
}

type toggleResponse struct {
	Recorded cycle.PeriodEvent `json:"recorded"`
	cycleStateResponse
}

type calendarResponse struct {
	Month string                `json:"month"`
	Days  []cycle.DayAnnotation `json:"days"`
}

func newCycleStateResponse(state *cycle.CycleState) cycleStateResponse {
	if state == nil {
		return cycleStateResponse{Status: stateStatusInsufficientData}
	}
	return cycleStateResponse{Status: stateStatusOK, State: state}
}

func (handler *Handler) GetCycleState(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	today, err := handler.requestToday(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid today")
	}

	handler.ensureDependencies()
	state, err := handler.cycleService.State(user.ID, today)
	if errors.Is(err, cycle.ErrInsufficientData) {
		return c.JSON(newCycleStateResponse(nil))
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to compute cycle state")
	}
	return c.JSON(newCycleStateResponse(&state))
}

func (handler *Handler) RecordCycleEvent(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	day, err := dateParam(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	input := recordEventInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	kind, err := cycle.ParseKind(input.Kind)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid kind")
	}

	handler.ensureDependencies()
	if err := handler.cycleService.RecordEvent(user.ID, day, kind); err != nil {
		return handler.respondServiceError(c, err, "failed to record event")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"recorded": cycle.PeriodEvent{Date: day, Kind: kind},
	})
}

func (handler *Handler) TogglePeriod(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	today, err := handler.requestToday(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid today")
	}

	handler.ensureDependencies()
	result, err := handler.cycleService.Toggle(user.ID, today)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to toggle period")
	}
	return c.JSON(toggleResponse{
		Recorded:           result.Recorded,
		cycleStateResponse: newCycleStateResponse(result.State),
	})
}

func (handler *Handler) GetCycleStarts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	starts, err := handler.cycleService.Starts(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load cycle history")
	}
	if starts == nil {
		starts = []civil.Date{}
	}
	return c.JSON(fiber.Map{"starts": starts})
}

func (handler *Handler) GetCycleLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	payload, err := handler.cycleService.ExportLog(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to export cycle log")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

func (handler *Handler) GetCycleCalendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	today, err := handler.requestToday(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid today")
	}

	year, month := today.Year, today.Month
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		year, month, err = cycle.ParseMonth(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid month")
		}
	}

	handler.ensureDependencies()
	days, err := handler.cycleService.Calendar(user.ID, year, month, today)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to build calendar")
	}
	return c.JSON(calendarResponse{
		Month: fmt.Sprintf("%04d-%02d", year, int(month)),
		Days:  days,
	})
}

func (handler *Handler) ImportLegacy(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	report, err := handler.importService.Import(user.ID, c.Body())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to import data")
	}
	return c.JSON(report)
}
