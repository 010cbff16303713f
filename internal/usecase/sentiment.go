package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/services/features"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

const (
	newsLookbackDays = 7
	newsLimit        = 5
)

// SentimentUseCase aggregates options, short interest, analyst and news signals.
type SentimentUseCase struct {
	md      domrepo.MarketData
	news    domrepo.NewsProvider
	timeout time.Duration
	l       *applogger.Logger
	now     func() time.Time
}

func NewSentimentUseCase(md domrepo.MarketData, news domrepo.NewsProvider, timeout time.Duration, l *applogger.Logger) *SentimentUseCase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &SentimentUseCase{md: md, news: news, timeout: timeout, l: l, now: time.Now}
}

// GetSentiment runs every source concurrently. A failing source leaves its
// field empty and is reported under Errors; the call itself only fails on an
// empty ticker.
func (uc *SentimentUseCase) GetSentiment(ctx context.Context, ticker string) (*models.Sentiment, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.Sentiment{
		Ticker: ticker,
		News:   []models.NewsItem{},
		Errors: map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.md.NearestOptionVolumes(ctx, ticker)
		if err != nil {
			ch <- item{"put_call_ratio", nil, err}
			return
		}
		r, err := features.OptionalRatio(features.PutCallRatio(v))
		ch <- item{"put_call_ratio", r, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.md.ShortStats(ctx, ticker)
		if err != nil {
			ch <- item{"short_interest_pct", nil, err}
			return
		}
		r, err := features.OptionalRatio(features.ShortInterestPct(v))
		ch <- item{"short_interest_pct", r, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.news.RecommendationTrends(ctx, ticker)
		ch <- item{"analyst_summary", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		from, to := uc.newsRange()
		v, err := uc.news.CompanyNews(ctx, ticker, from, to)
		ch <- item{"news", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = sourceFailure(it.err)
			uc.l.Warn("sentiment source failed",
				applogger.Ticker(ticker),
				applogger.String("source", it.name),
				applogger.Error(it.err),
			)
			continue
		}
		switch it.name {
		case "put_call_ratio":
			res.PutCallRatio = it.val.(*float64)
		case "short_interest_pct":
			res.ShortInterestPct = it.val.(*float64)
		case "analyst_summary":
			// most recent period, or an empty summary
			res.AnalystSummary = &models.AnalystTrend{}
			if v := it.val.([]models.AnalystTrend); len(v) > 0 {
				res.AnalystSummary = &v[0]
			}
		case "news":
			v := it.val.([]models.NewsItem)
			if len(v) > newsLimit {
				v = v[:newsLimit]
			}
			res.News = v
		}
	}

	if res.AnalystSummary == nil {
		res.AnalystSummary = &models.AnalystTrend{}
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (uc *SentimentUseCase) newsRange() (time.Time, time.Time) {
	return util.LookbackDays(uc.now().UTC(), newsLookbackDays)
}

// sourceFailure is the client-facing reason a source failed. Upstream error
// text is only logged: it can carry request URLs.
func sourceFailure(err error) string {
	switch {
	case errors.Is(err, domrepo.ErrNotFound):
		return "not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unavailable"
	}
}
