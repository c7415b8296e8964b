package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sakhi-health/sakhi/internal/services"
)

type registerInput struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	DisplayName     string `json:"display_name" form:"display_name"`
}

type loginInput struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	NewPassword string `json:"new_password" form:"new_password"`
	RememberMe  bool   `json:"remember_me" form:"remember_me"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if strings.TrimSpace(input.ConfirmPassword) == "" {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if strings.TrimSpace(input.Password) != strings.TrimSpace(input.ConfirmPassword) {
		return apiError(c, fiber.StatusBadRequest, "password mismatch")
	}

	handler.ensureDependencies()
	user, err := handler.authService.Register(input.Email, input.Password, input.DisplayName)
	switch {
	case errors.Is(err, services.ErrAuthRegisterInput):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrWeakPassword):
		return apiError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrPasswordTooLong):
		return apiError(c, fiber.StatusBadRequest, "password too long")
	case errors.Is(err, services.ErrAuthEmailExists):
		return apiError(c, fiber.StatusConflict, "email already exists")
	case err != nil:
		return handler.respondServiceError(c, err, "failed to create account")
	}

	if err := handler.setAuthCookie(c, &user, true); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	handler.logger.WithField("user_id", user.ID).Info("account registered")
	return c.Status(fiber.StatusCreated).JSON(newProfileResponse(user))
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := loginInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	input.RememberMe = input.RememberMe || parseBoolValue(c.FormValue("remember_me"))

	handler.ensureDependencies()
	limiterKey := loginLimiterKey(c, input.Email)
	now := handler.clock()
	if handler.loginLimiter.tooManyRecent(limiterKey, now, loginAttemptLimit, loginAttemptWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Authenticate(input.Email, input.Password)
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		handler.loginLimiter.addFailure(limiterKey, now, loginAttemptWindow)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to sign in")
	}
	handler.loginLimiter.reset(limiterKey)

	if user.MustChangePassword {
		if strings.TrimSpace(input.NewPassword) == "" {
			return apiError(c, fiber.StatusForbidden, "password change required")
		}
		user, err = handler.authService.ResetPassword(user.Email, strings.TrimSpace(input.NewPassword), false)
		if err != nil {
			return handler.respondPasswordError(c, err)
		}
	}

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(newProfileResponse(user))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	handler.ensureDependencies()
	if _, err := handler.authService.Authenticate(user.Email, input.CurrentPassword); err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			return apiError(c, fiber.StatusUnauthorized, "invalid current password")
		}
		return handler.respondServiceError(c, err, "failed to change password")
	}
	if strings.TrimSpace(input.NewPassword) == strings.TrimSpace(input.CurrentPassword) {
		return apiError(c, fiber.StatusBadRequest, "new password must differ")
	}

	updated, err := handler.authService.ResetPassword(user.Email, strings.TrimSpace(input.NewPassword), false)
	if err != nil {
		return handler.respondPasswordError(c, err)
	}
	if err := handler.setAuthCookie(c, &updated, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) respondPasswordError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrWeakPassword):
		return apiError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrPasswordTooLong):
		return apiError(c, fiber.StatusBadRequest, "password too long")
	default:
		return handler.respondServiceError(c, err, "failed to change password")
	}
}
