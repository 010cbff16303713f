package repository

import (
	"context"
	"errors"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/pkg/cache"
	applogger "StockLens/pkg/logger"
)

// HistoryArchive persists fetched price history.
type HistoryArchive interface {
	StoreHistory(ctx context.Context, ticker, bar string, points []models.PricePoint) error
}

// routedMarketData serves History from a dedicated provider and everything
// else from the vendor.
type routedMarketData struct {
	domrepo.MarketData
	history domrepo.HistoryProvider
}

// WithHistorySource replaces the history leg of md.
func WithHistorySource(md domrepo.MarketData, h domrepo.HistoryProvider) domrepo.MarketData {
	return &routedMarketData{MarketData: md, history: h}
}

func (r *routedMarketData) History(ctx context.Context, ticker string, w domrepo.Window) ([]models.PricePoint, error) {
	return r.history.History(ctx, ticker, w)
}

// archivingMarketData copies every non-empty history response into an archive.
type archivingMarketData struct {
	domrepo.MarketData
	archive HistoryArchive
	l       *applogger.Logger
}

// WithHistoryArchive stores history fetched through md, best effort.
func WithHistoryArchive(md domrepo.MarketData, a HistoryArchive, l *applogger.Logger) domrepo.MarketData {
	if l == nil {
		l = applogger.Nop()
	}
	return &archivingMarketData{MarketData: md, archive: a, l: l}
}

func (a *archivingMarketData) History(ctx context.Context, ticker string, w domrepo.Window) ([]models.PricePoint, error) {
	pts, err := a.MarketData.History(ctx, ticker, w)
	if err != nil || len(pts) == 0 {
		return pts, err
	}
	if aerr := a.archive.StoreHistory(ctx, ticker, w.Bar, pts); aerr != nil {
		a.l.Warn("archive history failed",
			applogger.Ticker(ticker),
			applogger.String("bar", w.Bar),
			applogger.Error(aerr),
		)
	}
	return pts, nil
}

// CacheTTL configures CachedMarketData expirations.
type CacheTTL struct {
	History      time.Duration
	Fundamentals time.Duration
	Options      time.Duration
}

// CachedMarketData decorates MarketData with a read-through cache. Cache
// failures never fail a request.
type CachedMarketData struct {
	next  domrepo.MarketData
	store cache.Store
	ttl   CacheTTL
	l     *applogger.Logger
}

var _ domrepo.MarketData = (*CachedMarketData)(nil)

func NewCachedMarketData(next domrepo.MarketData, store cache.Store, ttl CacheTTL, l *applogger.Logger) *CachedMarketData {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedMarketData{next: next, store: store, ttl: ttl, l: l}
}

func (c *CachedMarketData) History(ctx context.Context, ticker string, w domrepo.Window) ([]models.PricePoint, error) {
	key := cache.Key("history", ticker, w.Range, w.Bar)
	return readThrough(ctx, c, key, c.ttl.History, func() ([]models.PricePoint, error) {
		return c.next.History(ctx, ticker, w)
	})
}

func (c *CachedMarketData) Fundamentals(ctx context.Context, ticker string) (models.Fundamentals, error) {
	key := cache.Key("fundamentals", ticker)
	return readThrough(ctx, c, key, c.ttl.Fundamentals, func() (models.Fundamentals, error) {
		return c.next.Fundamentals(ctx, ticker)
	})
}

func (c *CachedMarketData) ShortStats(ctx context.Context, ticker string) (models.ShortStats, error) {
	key := cache.Key("short", ticker)
	return readThrough(ctx, c, key, c.ttl.Fundamentals, func() (models.ShortStats, error) {
		return c.next.ShortStats(ctx, ticker)
	})
}

func (c *CachedMarketData) NearestOptionVolumes(ctx context.Context, ticker string) (models.OptionVolumes, error) {
	key := cache.Key("options", ticker)
	return readThrough(ctx, c, key, c.ttl.Options, func() (models.OptionVolumes, error) {
		return c.next.NearestOptionVolumes(ctx, ticker)
	})
}

func readThrough[T any](ctx context.Context, c *CachedMarketData, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if ttl <= 0 {
		return load()
	}

	v, err := cache.GetJSON[T](ctx, c.store, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.l.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if serr := cache.SetJSON(ctx, c.store, key, v, ttl); serr != nil {
		c.l.Warn("cache write failed", applogger.String("key", key), applogger.Error(serr))
	}
	return v, nil
}
