package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sakhi-health/sakhi/internal/db"
	"github.com/sakhi-health/sakhi/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunImportLegacyCommand loads a browser storage export from filePath into
// the account behind email.
func RunImportLegacyCommand(dbPath string, email string, filePath string, logger *logrus.Logger) error {
	payload, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer closeDatabase(database)

	var fieldLogger logrus.FieldLogger = logrus.StandardLogger()
	if logger != nil {
		fieldLogger = logger
	}
	return importLegacy(database, email, payload, os.Stdout, fieldLogger)
}

func importLegacy(database *gorm.DB, email string, payload []byte, out io.Writer, logger logrus.FieldLogger) error {
	repositories := db.NewRepositories(database)
	user, err := services.NewAuthService(repositories.Users).FindByEmail(email)
	if err != nil {
		return fmt.Errorf("find user %s: %w", email, err)
	}

	cycles := services.NewCycleService(repositories.CycleLogs, repositories.Users, logger)
	tracking := services.NewTrackingService(repositories.DailyMetrics)
	report, err := services.NewLegacyImportService(cycles, tracking, logger).Import(user.ID, payload)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported into %s\n", user.Email)
	fmt.Fprintf(out, "  period starts:                   %d\n", report.StartsFromPeriods)
	fmt.Fprintf(out, "  days merged into runs:           %d\n", report.CollapsedDays)
	fmt.Fprintf(out, "  events from cycle log:           %d\n", report.EventsFromCycleLog)
	fmt.Fprintf(out, "  tracking days:                   %d\n", report.TrackingDaysImported)
	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "  skipped:                         %d\n", len(report.Skipped))
		for _, reason := range report.Skipped {
			fmt.Fprintf(out, "    - %s\n", reason)
		}
	}
	return nil
}
