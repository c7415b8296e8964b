package cycle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// persistedEntry is the on-disk shape of one date: {"periodStarted": true}
// or {"periodEnded": true}.
type persistedEntry struct {
	PeriodStarted bool `json:"periodStarted,omitempty"`
	PeriodEnded   bool `json:"periodEnded,omitempty"`
}

type DecodeReport struct {
	// Dropped lists the keys that were rejected, in key order.
	Dropped []string
	// Unreadable is set when the payload as a whole was not a JSON object.
	Unreadable bool
}

func (report DecodeReport) Corrupt() bool {
	return report.Unreadable || len(report.Dropped) > 0
}

func Encode(log *Log) ([]byte, error) {
	entries := make(map[string]persistedEntry, log.Len())
	for _, event := range log.Events() {
		switch event.Kind {
		case KindStarted:
			entries[event.Date.String()] = persistedEntry{PeriodStarted: true}
		case KindEnded:
			entries[event.Date.String()] = persistedEntry{PeriodEnded: true}
		}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode cycle log: %w", err)
	}
	return payload, nil
}

// Decode always returns a usable log. When entries had to be discarded the
// error wraps ErrCorruptLog and the log holds whatever could be read.
func Decode(payload []byte) (*Log, DecodeReport, error) {
	log := NewLog()
	report := DecodeReport{}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return log, report, nil
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		report.Unreadable = true
		return log, report, fmt.Errorf("%w: %v", ErrCorruptLog, err)
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		date, err := ParseDay(key)
		if err != nil {
			report.Dropped = append(report.Dropped, key)
			continue
		}
		entry := persistedEntry{}
		if err := json.Unmarshal(raw[key], &entry); err != nil {
			report.Dropped = append(report.Dropped, key)
			continue
		}
		switch {
		case entry.PeriodStarted && !entry.PeriodEnded:
			log.Record(date, KindStarted)
		case entry.PeriodEnded && !entry.PeriodStarted:
			log.Record(date, KindEnded)
		default:
			report.Dropped = append(report.Dropped, key)
		}
	}

	if report.Corrupt() {
		return log, report, fmt.Errorf("%w: dropped %d entries", ErrCorruptLog, len(report.Dropped))
	}
	return log, report, nil
}
