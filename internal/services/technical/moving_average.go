package technical

import (
	"fmt"
	"math"
)

// SMA returns the arithmetic mean of the last window closes.
func SMA(closes []float64, window int) (float64, error) {
	if window < 1 {
		return 0, fmt.Errorf("sma window %d: %w", window, ErrInvalidParameter)
	}
	if len(closes) < window {
		return 0, insufficient(fmt.Sprintf("sma(%d)", window), window, len(closes))
	}
	// running mean; exact on constant input
	v := 0.0
	for k, c := range closes[len(closes)-window:] {
		v += (c - v) / float64(k+1)
	}
	if !finite(v) {
		return 0, nonFinite("sma", v)
	}
	return v, nil
}

// EMASeries runs the exponential recurrence over values with α = 2/(span+1),
// seeded with the first value. The result has the same length as values.
func EMASeries(values []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, fmt.Errorf("ema span %d: %w", span, ErrInvalidParameter)
	}
	if len(values) == 0 {
		return nil, insufficient(fmt.Sprintf("ema(%d)", span), 1, 0)
	}
	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out, nil
}

// EMA returns the final value of EMASeries. At least span closes are required.
func EMA(closes []float64, span int) (float64, error) {
	if span < 1 {
		return 0, fmt.Errorf("ema span %d: %w", span, ErrInvalidParameter)
	}
	if len(closes) < span {
		return 0, insufficient(fmt.Sprintf("ema(%d)", span), span, len(closes))
	}
	series, err := EMASeries(closes, span)
	if err != nil {
		return 0, err
	}
	v := series[len(series)-1]
	if !finite(v) {
		return 0, nonFinite("ema", v)
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
