package api

import (
	"bytes"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"github.com/sakhi-health/sakhi/internal/services"
)

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	today, err := handler.requestToday(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid today")
	}
	from, to, err := services.ParseExportRange(c.Query("from"), c.Query("to"), today)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, exportRangeMessage(err))
	}

	handler.ensureDependencies()
	rows, err := handler.exportService.BuildRows(user.ID, from, to, today)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to build export")
	}

	var output bytes.Buffer
	if err := services.WriteExportCSV(&output, rows); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, "text/csv", buildExportFilename(today, "csv"))
	return c.Send(output.Bytes())
}

func exportRangeMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrExportFromDateInvalid):
		return "invalid from date"
	case errors.Is(err, services.ErrExportToDateInvalid):
		return "invalid to date"
	default:
		return "invalid range"
	}
}

func buildExportFilename(today civil.Date, extension string) string {
	return fmt.Sprintf("sakhi-export-%s.%s", today.String(), extension)
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}
