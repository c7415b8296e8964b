package cycle

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DayLayout is the canonical key form of a calendar date in the cycle log.
// Lexical order of keys in this form equals chronological order.
const DayLayout = "2006-01-02"

func ParseDay(raw string) (civil.Date, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) != len(DayLayout) {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	day, err := civil.ParseDate(trimmed)
	if err != nil || !day.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return day, nil
}

// Today returns the local civil date of now in location. Callers resolve it
// once at the edge and pass it down; nothing in this package reads the clock.
func Today(now time.Time, location *time.Location) civil.Date {
	if location == nil {
		location = time.UTC
	}
	return civil.DateOf(now.In(location))
}

func MonthBounds(year int, month time.Month) (civil.Date, civil.Date) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return civil.DateOf(first), civil.DateOf(last)
}

func ParseMonth(raw string) (int, time.Month, error) {
	parsed, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return parsed.Year(), parsed.Month(), nil
}

func betweenInclusive(day civil.Date, start civil.Date, end civil.Date) bool {
	return !day.Before(start) && !day.After(end)
}
