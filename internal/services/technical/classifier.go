package technical

import (
	"fmt"
	"time"

	"StockLens/internal/domain/models"
)

// Classification thresholds in percent.
const (
	StrongBuyThreshold  = 3.0
	BuyThreshold        = 1.0
	SellThreshold       = -1.0
	StrongSellThreshold = -3.0
)

// Classify maps a finite percentage change to its category. Bounds are checked
// top-down and the first match wins, so 3 is StrongBuy, 1 is Buy, -1 is Sell and
// -3 is StrongSell.
func Classify(changePct float64) models.Recommendation {
	switch {
	case changePct >= StrongBuyThreshold:
		return models.StrongBuy
	case changePct >= BuyThreshold:
		return models.Buy
	case changePct > SellThreshold:
		return models.Hold
	case changePct > StrongSellThreshold:
		return models.Sell
	default:
		return models.StrongSell
	}
}

// Change is the move between the two most recent closes of a series.
type Change struct {
	Previous float64
	Latest   float64
	Pct      float64
	Elapsed  time.Duration
}

// ChangePct returns (latest-previous)/previous*100.
func ChangePct(previous, latest float64) (float64, error) {
	if previous == 0 {
		return 0, fmt.Errorf("previous close is zero: %w", ErrDegenerateInput)
	}
	pct := (latest - previous) / previous * 100
	if !finite(pct) {
		return 0, nonFinite("change_pct", pct)
	}
	return pct, nil
}

// LatestChange computes the change between the last two points of s.
func LatestChange(s Series) (Change, error) {
	if err := s.Require("change", 2); err != nil {
		return Change{}, err
	}
	prev, last := s.At(s.Len()-2), s.Latest()
	pct, err := ChangePct(prev.Close, last.Close)
	if err != nil {
		return Change{}, err
	}
	return Change{
		Previous: prev.Close,
		Latest:   last.Close,
		Pct:      pct,
		Elapsed:  last.Timestamp.Sub(prev.Timestamp),
	}, nil
}
