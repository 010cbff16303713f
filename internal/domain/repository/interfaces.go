package repository

import (
	"context"
	"errors"
	"time"

	"StockLens/internal/domain/models"
)

// ErrNotFound is returned by providers that know nothing about a ticker.
var ErrNotFound = errors.New("not found")

// HistoryProvider returns an ascending price series for a ticker.
type HistoryProvider interface {
	History(ctx context.Context, ticker string, w Window) ([]models.PricePoint, error)
}

// FundamentalsProvider exposes valuation ratios and short interest inputs.
type FundamentalsProvider interface {
	Fundamentals(ctx context.Context, ticker string) (models.Fundamentals, error)
	ShortStats(ctx context.Context, ticker string) (models.ShortStats, error)
}

// OptionsProvider returns contract volumes of the nearest option expiry.
type OptionsProvider interface {
	NearestOptionVolumes(ctx context.Context, ticker string) (models.OptionVolumes, error)
}

// MarketData is the full surface of a market data vendor.
type MarketData interface {
	HistoryProvider
	FundamentalsProvider
	OptionsProvider
}

// NewsProvider serves company news and analyst recommendation trends.
type NewsProvider interface {
	CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsItem, error)
	RecommendationTrends(ctx context.Context, ticker string) ([]models.AnalystTrend, error)
}

// SignalPublisher forwards computed signals to downstream consumers.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, ev models.SignalEvent) error
	Close() error
}

type Metrics interface {
	RecordUpstream(source, op string, seconds float64, err error)
	RecordError(kind string)
	RecordLastClose(ticker string, price float64)
	RecordRecommendation(r models.Recommendation)
}
