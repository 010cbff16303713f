package service

import (
	"context"
	"errors"

	"StockLens/internal/domain/models"
)

// ErrNarratorDisabled is returned when no language model is configured.
var ErrNarratorDisabled = errors.New("narrator disabled")

// AnalysisInput is everything the narrator may cite about a ticker.
type AnalysisInput struct {
	Ticker       string
	Fundamentals models.Fundamentals
	Indicators   models.IndicatorSet
}

// Narrator turns fundamentals and indicators into a short written analysis.
type Narrator interface {
	Narrate(ctx context.Context, in AnalysisInput) (string, error)
}
