package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	profile := api.Group("/profile", handler.AuthRequired)
	profile.Get("", handler.GetProfile)
	profile.Put("", handler.UpdateProfile)

	cycle := api.Group("/cycle", handler.AuthRequired)
	cycle.Get("/state", handler.GetCycleState)
	cycle.Post("/events/:date", handler.RecordCycleEvent)
	cycle.Post("/toggle", handler.TogglePeriod)
	cycle.Get("/starts", handler.GetCycleStarts)
	cycle.Get("/log", handler.GetCycleLog)
	cycle.Get("/calendar", handler.GetCycleCalendar)
	cycle.Post("/import", handler.ImportLegacy)

	tracking := api.Group("/tracking", handler.AuthRequired)
	tracking.Get("", handler.ListTracking)
	tracking.Get("/:date", handler.GetTracking)
	tracking.Put("/:date", handler.UpdateTracking)

	export := api.Group("/export", handler.AuthRequired)
	export.Get("/csv", handler.ExportCSV)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
