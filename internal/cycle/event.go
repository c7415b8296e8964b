package cycle

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

type Kind string

const (
	KindStarted Kind = "started"
	KindEnded   Kind = "ended"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindStarted:
		return KindStarted, nil
	case KindEnded:
		return KindEnded, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, raw)
	}
}

func (kind Kind) Valid() bool {
	return kind == KindStarted || kind == KindEnded
}

type PeriodEvent struct {
	Date civil.Date `json:"date"`
	Kind Kind       `json:"kind"`
}
