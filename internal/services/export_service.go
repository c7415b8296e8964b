package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/models"
)

var ExportCSVHeaders = []string{
	"Date",
	"Day",
	"Event",
	"Water glasses",
	"Sleep hours",
	"Exercise minutes",
	"Mood",
	"Symptoms",
	"Notes",
}

// ExportRow is one calendar date that carries a period marker, a logged
// event or tracking data.
type ExportRow struct {
	Date     civil.Date
	Day      cycle.DayKind
	Event    cycle.Kind
	Tracking *models.DailyMetric
}

type ExportService struct {
	cycles   *CycleService
	tracking *TrackingService
}

func NewExportService(cycles *CycleService, tracking *TrackingService) *ExportService {
	return &ExportService{cycles: cycles, tracking: tracking}
}

// BuildRows joins the calendar annotation with tracking entries for
// [from, to]. Dates with nothing to report are left out.
func (service *ExportService) BuildRows(userID uint, from civil.Date, to civil.Date, today civil.Date) ([]ExportRow, error) {
	entries, err := service.tracking.List(userID, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]models.DailyMetric, len(entries))
	for _, entry := range entries {
		byDate[entry.Date] = entry
	}

	profile, err := service.cycles.profileFor(userID)
	if err != nil {
		return nil, err
	}
	if profile.CycleLengthDays < 1 {
		profile.CycleLengthDays = cycle.DefaultCycleLength
	}
	log, _, err := service.cycles.LoadLog(userID)
	if err != nil {
		return nil, err
	}
	annotations, err := cycle.Annotate(log, profile, from, to, today)
	if err != nil {
		return nil, err
	}

	rows := make([]ExportRow, 0)
	for _, annotation := range annotations {
		row := ExportRow{Date: annotation.Date, Day: annotation.Kind, Event: annotation.Event}
		if entry, ok := byDate[annotation.Date.String()]; ok {
			row.Tracking = &entry
		}
		if row.Tracking == nil && row.Event == "" && row.Day != cycle.DayPeriod {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (row ExportRow) Columns() []string {
	columns := []string{row.Date.String(), string(row.Day), string(row.Event), "", "", "", "", "", ""}
	if row.Tracking == nil {
		return columns
	}
	if row.Tracking.WaterGlasses != nil {
		columns[3] = strconv.Itoa(*row.Tracking.WaterGlasses)
	}
	if row.Tracking.SleepHours != nil {
		columns[4] = strconv.FormatFloat(*row.Tracking.SleepHours, 'f', -1, 64)
	}
	if row.Tracking.ExerciseMinutes != nil {
		columns[5] = strconv.Itoa(*row.Tracking.ExerciseMinutes)
	}
	if row.Tracking.Mood != nil {
		columns[6] = *row.Tracking.Mood
	}
	columns[7] = strings.Join(row.Tracking.Symptoms, "; ")
	columns[8] = row.Tracking.Notes
	return columns
}

func WriteExportCSV(output io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(ExportCSVHeaders); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return fmt.Errorf("write export row %s: %w", row.Date, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
