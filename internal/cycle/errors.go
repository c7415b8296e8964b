package cycle

import "errors"

var (
	// ErrInsufficientData means no period start has been recorded on or
	// before the reference date. Callers show a placeholder.
	ErrInsufficientData = errors.New("insufficient cycle data")
	// ErrInvalidProfile means the cycle length cannot drive the arithmetic.
	ErrInvalidProfile = errors.New("invalid cycle profile")
	// ErrCorruptLog means some or all of a persisted log could not be read.
	// The accompanying log is still usable.
	ErrCorruptLog = errors.New("corrupt cycle log")

	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidKind  = errors.New("invalid period event kind")
	ErrInvalidRange = errors.New("invalid date range")
)
