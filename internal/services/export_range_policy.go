package services

import (
	"errors"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
)

const DefaultExportSpanDays = 365

var (
	ErrExportFromDateInvalid = errors.New("export invalid from date")
	ErrExportToDateInvalid   = errors.New("export invalid to date")
	ErrExportRangeInvalid    = errors.New("export invalid range")
)

// ParseExportRange resolves the optional from/to query pair. A missing to
// means today and a missing from means DefaultExportSpanDays ending at to.
func ParseExportRange(rawFrom string, rawTo string, today civil.Date) (civil.Date, civil.Date, error) {
	to := today
	if toRaw := strings.TrimSpace(rawTo); toRaw != "" {
		parsed, err := cycle.ParseDay(toRaw)
		if err != nil {
			return civil.Date{}, civil.Date{}, ErrExportToDateInvalid
		}
		to = parsed
	}

	from := to.AddDays(-(DefaultExportSpanDays - 1))
	if fromRaw := strings.TrimSpace(rawFrom); fromRaw != "" {
		parsed, err := cycle.ParseDay(fromRaw)
		if err != nil {
			return civil.Date{}, civil.Date{}, ErrExportFromDateInvalid
		}
		from = parsed
	}

	if to.Before(from) || to.DaysSince(from) >= MaxTrackingRangeDays {
		return civil.Date{}, civil.Date{}, ErrExportRangeInvalid
	}
	return from, to, nil
}
