package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/domain/service"
	"StockLens/internal/services/technical"
	applogger "StockLens/pkg/logger"
)

// ErrNoHistory is returned when a chart window holds no points.
var ErrNoHistory = fmt.Errorf("no historical data found: %w", domrepo.ErrNotFound)

// StockConfig tunes StockUseCase.
type StockConfig struct {
	Indicators     technical.Config
	MinPoints      int
	Timeout        time.Duration
	PublishTimeout time.Duration
}

// StockUseCase serves quotes, indicators, chart history, fundamentals and
// generated analyses of a ticker.
type StockUseCase struct {
	md       domrepo.MarketData
	narrator service.Narrator
	pub      domrepo.SignalPublisher
	metrics  domrepo.Metrics
	cfg      StockConfig
	l        *applogger.Logger
	now      func() time.Time
	inflight sync.WaitGroup
}

func NewStockUseCase(
	md domrepo.MarketData,
	narrator service.Narrator,
	pub domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	cfg StockConfig,
	l *applogger.Logger,
) *StockUseCase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	if min := cfg.Indicators.MinPoints(); cfg.MinPoints < min {
		cfg.MinPoints = min
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &StockUseCase{
		md:       md,
		narrator: narrator,
		pub:      pub,
		metrics:  metrics,
		cfg:      cfg,
		l:        l,
		now:      time.Now,
	}
}

// Quote returns the latest close of ticker over five daily bars with its
// change against the previous close and the resulting recommendation.
func (uc *StockUseCase) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	s, err := uc.series(ctx, ticker, domrepo.WindowQuote)
	if err != nil {
		return models.Quote{}, err
	}
	ch, err := technical.LatestChange(s)
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", ticker, err)
	}

	q := technical.AssembleQuote(ticker, ch)
	if uc.metrics != nil {
		uc.metrics.RecordLastClose(ticker, q.LatestClose)
		uc.metrics.RecordRecommendation(q.Recommendation)
	}
	uc.publish(models.SignalEvent{Ticker: ticker, Kind: "quote", Quote: &q, Timestamp: uc.now().UTC()})
	return q, nil
}

// Indicators computes the indicator set of ticker over one year of daily bars.
func (uc *StockUseCase) Indicators(ctx context.Context, ticker string) (models.IndicatorSet, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	set, err := uc.indicators(ctx, ticker)
	if err != nil {
		return models.IndicatorSet{}, err
	}
	uc.publish(models.SignalEvent{Ticker: ticker, Kind: "indicators", Indicators: &set, Timestamp: uc.now().UTC()})
	return set, nil
}

// History returns the chart of ticker for a chart interval (1d, 1w, 1m, 6m).
func (uc *StockUseCase) History(ctx context.Context, ticker, interval string) ([]models.HistoryPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	pts, err := uc.md.History(ctx, ticker, domrepo.WindowForInterval(interval))
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", ticker, err)
	}
	if len(pts) == 0 {
		return nil, ErrNoHistory
	}

	out := make([]models.HistoryPoint, len(pts))
	for i, p := range pts {
		out[i] = models.HistoryPoint{
			Date:  p.Timestamp.Format(models.HistoryDateLayout),
			Close: technical.Round2(p.Close),
		}
	}
	return out, nil
}

// Fundamentals returns the valuation ratios of ticker.
func (uc *StockUseCase) Fundamentals(ctx context.Context, ticker string) (models.Fundamentals, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	f, err := uc.md.Fundamentals(ctx, ticker)
	if err != nil {
		return models.Fundamentals{}, fmt.Errorf("fundamentals %s: %w", ticker, err)
	}
	f.Ticker = ticker
	return f, nil
}

// Analysis narrates fundamentals and indicators of ticker.
func (uc *StockUseCase) Analysis(ctx context.Context, ticker string) (models.Analysis, error) {
	if uc.narrator == nil {
		return models.Analysis{}, service.ErrNarratorDisabled
	}

	f, err := uc.Fundamentals(ctx, ticker)
	if err != nil {
		return models.Analysis{}, err
	}
	set, err := func() (models.IndicatorSet, error) {
		ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
		return uc.indicators(ctx, ticker)
	}()
	if err != nil {
		return models.Analysis{}, err
	}

	text, err := uc.narrator.Narrate(ctx, service.AnalysisInput{Ticker: ticker, Fundamentals: f, Indicators: set})
	if err != nil {
		return models.Analysis{}, err
	}
	return models.Analysis{Ticker: ticker, Analysis: text}, nil
}

// Wait blocks until in-flight signal publications finish.
func (uc *StockUseCase) Wait() {
	uc.inflight.Wait()
}

func (uc *StockUseCase) indicators(ctx context.Context, ticker string) (models.IndicatorSet, error) {
	s, err := uc.series(ctx, ticker, domrepo.WindowIndicators)
	if err != nil {
		return models.IndicatorSet{}, err
	}
	if err := s.Require("indicators", uc.cfg.MinPoints); err != nil {
		uc.recordError("insufficient_data")
		return models.IndicatorSet{}, fmt.Errorf("indicators %s: %w", ticker, err)
	}
	set, err := technical.Compute(s, uc.cfg.Indicators)
	if err != nil {
		uc.recordError("indicator_compute")
		return models.IndicatorSet{}, fmt.Errorf("indicators %s: %w", ticker, err)
	}
	return set, nil
}

func (uc *StockUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}

func (uc *StockUseCase) series(ctx context.Context, ticker string, w domrepo.Window) (technical.Series, error) {
	pts, err := uc.md.History(ctx, ticker, w)
	if err != nil {
		return technical.Series{}, fmt.Errorf("history %s: %w", ticker, err)
	}
	s, err := technical.NewSeries(pts)
	if err != nil {
		return technical.Series{}, fmt.Errorf("series %s: %w", ticker, err)
	}
	return s, nil
}

// publish forwards ev without blocking the request.
func (uc *StockUseCase) publish(ev models.SignalEvent) {
	if uc.pub == nil {
		return
	}
	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), uc.cfg.PublishTimeout)
		defer cancel()
		if err := uc.pub.PublishSignal(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
			uc.recordError("publish_signal")
			uc.l.Warn("publish signal failed",
				applogger.Ticker(ev.Ticker),
				applogger.String("kind", ev.Kind),
				applogger.Error(err),
			)
		}
	}()
}
