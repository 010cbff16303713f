package technical

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is returned when a series is shorter than an indicator's floor.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateInput is returned when a ratio would divide by zero.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrNonFiniteResult is returned when a computation yields NaN or ±Inf.
	ErrNonFiniteResult = errors.New("non-finite result")
	// ErrInvalidSeries is returned by NewSeries for unordered, duplicated or non-finite points.
	ErrInvalidSeries = errors.New("invalid series")
	// ErrInvalidParameter is returned for non-positive windows and inconsistent spans.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// InsufficientDataError carries how many points an indicator needed.
// It matches ErrInsufficientData with errors.Is.
type InsufficientDataError struct {
	Indicator string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d points, have %d", e.Indicator, e.Need, e.Have)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

func insufficient(indicator string, need, have int) error {
	return &InsufficientDataError{Indicator: indicator, Need: need, Have: have}
}

func nonFinite(indicator string, v float64) error {
	return fmt.Errorf("%s = %v: %w", indicator, v, ErrNonFiniteResult)
}
