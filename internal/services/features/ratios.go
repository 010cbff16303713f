package features

import (
	"errors"
	"fmt"
	"math"

	"StockLens/internal/domain/models"
	"StockLens/internal/services/technical"
)

// PutCallRatio divides put volume by call volume of the nearest expiry.
// Zero call volume is a degenerate input.
func PutCallRatio(v models.OptionVolumes) (float64, error) {
	if v.Calls == 0 {
		return 0, fmt.Errorf("call volume is zero: %w", technical.ErrDegenerateInput)
	}
	return technical.Round2(float64(v.Puts) / float64(v.Calls)), nil
}

// ShortInterestPct returns shares short as a percentage of the float.
func ShortInterestPct(s models.ShortStats) (float64, error) {
	if s.FloatShares == 0 {
		return 0, fmt.Errorf("float shares is zero: %w", technical.ErrDegenerateInput)
	}
	pct := s.SharesShort / s.FloatShares * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, fmt.Errorf("short interest %v: %w", pct, technical.ErrNonFiniteResult)
	}
	return technical.Round2(pct), nil
}

// OptionalRatio turns a degenerate ratio into nil and keeps every other error.
func OptionalRatio(v float64, err error) (*float64, error) {
	if err != nil {
		if errors.Is(err, technical.ErrDegenerateInput) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
