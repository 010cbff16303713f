package technical

import (
	"fmt"
	"math"

	"StockLens/internal/domain/models"
)

// Series is an immutable, strictly ascending sequence of price points.
// The zero value is an empty series and satisfies no indicator floor.
type Series struct {
	points []models.PricePoint
}

// NewSeries validates points and takes a private copy of them.
func NewSeries(points []models.PricePoint) (Series, error) {
	if len(points) == 0 {
		return Series{}, insufficient("series", 1, 0)
	}
	cp := make([]models.PricePoint, len(points))
	for i, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			return Series{}, fmt.Errorf("point %d close %v: %w", i, p.Close, ErrInvalidSeries)
		}
		if i > 0 {
			prev := points[i-1].Timestamp
			if p.Timestamp.Equal(prev) {
				return Series{}, fmt.Errorf("point %d duplicates timestamp %s: %w", i, p.Timestamp, ErrInvalidSeries)
			}
			if p.Timestamp.Before(prev) {
				return Series{}, fmt.Errorf("point %d at %s precedes %s: %w", i, p.Timestamp, prev, ErrInvalidSeries)
			}
		}
		cp[i] = p
	}
	return Series{points: cp}, nil
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.points) }

// At returns the i-th point.
func (s Series) At(i int) models.PricePoint { return s.points[i] }

// Latest returns the most recent point. It panics on an empty series.
func (s Series) Latest() models.PricePoint { return s.points[len(s.points)-1] }

// Points returns a copy of the underlying points.
func (s Series) Points() []models.PricePoint {
	out := make([]models.PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Close
	}
	return out
}

// Require fails with an InsufficientDataError when the series has fewer than need points.
func (s Series) Require(indicator string, need int) error {
	if len(s.points) < need {
		return insufficient(indicator, need, len(s.points))
	}
	return nil
}
