package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sakhi-health/sakhi/internal/models"
	"github.com/sakhi-health/sakhi/internal/services"
)

type profileResponse struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	DisplayName        string `json:"display_name"`
	CycleLength        int    `json:"cycle_length"`
	PeriodLength       int    `json:"period_length"`
	ProfileComplete    bool   `json:"profile_complete"`
	MustChangePassword bool   `json:"must_change_password"`
}

type profileInput struct {
	CycleLength    int     `json:"cycle_length"`
	PeriodLength   int     `json:"period_length"`
	LastPeriodDate string  `json:"last_period_date"`
	DisplayName    *string `json:"display_name"`
}

func newProfileResponse(user models.User) profileResponse {
	return profileResponse{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		CycleLength:        user.CycleLength,
		PeriodLength:       user.PeriodLength,
		ProfileComplete:    user.ProfileComplete(),
		MustChangePassword: user.MustChangePassword,
	}
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	stored, err := handler.profileService.Load(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load profile")
	}
	return c.JSON(newProfileResponse(stored))
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := profileInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	today, err := handler.requestToday(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid today")
	}

	handler.ensureDependencies()
	updated, err := handler.profileService.Save(user.ID, services.ProfileValidationInput{
		CycleLength:       input.CycleLength,
		PeriodLength:      input.PeriodLength,
		LastPeriodDateRaw: input.LastPeriodDate,
		DisplayName:       input.DisplayName,
	}, today)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to save profile")
	}
	return c.JSON(newProfileResponse(updated))
}
