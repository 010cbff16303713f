package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/domain/service"
	"StockLens/internal/services/technical"
)

type fakeMarket struct {
	history      map[domrepo.Window][]models.PricePoint
	historyErr   error
	fundamentals models.Fundamentals
	fundErr      error
	short        models.ShortStats
	shortErr     error
	options      models.OptionVolumes
	optionsErr   error
	lastWindow   domrepo.Window
}

func (f *fakeMarket) History(_ context.Context, _ string, w domrepo.Window) ([]models.PricePoint, error) {
	f.lastWindow = w
	return f.history[w], f.historyErr
}
func (f *fakeMarket) Fundamentals(context.Context, string) (models.Fundamentals, error) {
	return f.fundamentals, f.fundErr
}
func (f *fakeMarket) ShortStats(context.Context, string) (models.ShortStats, error) {
	return f.short, f.shortErr
}
func (f *fakeMarket) NearestOptionVolumes(context.Context, string) (models.OptionVolumes, error) {
	return f.options, f.optionsErr
}

type fakeNews struct {
	news      []models.NewsItem
	newsErr   error
	trends    []models.AnalystTrend
	trendsErr error
	from, to  time.Time
}

func (f *fakeNews) CompanyNews(_ context.Context, _ string, from, to time.Time) ([]models.NewsItem, error) {
	f.from, f.to = from, to
	return f.news, f.newsErr
}
func (f *fakeNews) RecommendationTrends(context.Context, string) ([]models.AnalystTrend, error) {
	return f.trends, f.trendsErr
}

type memPublisher struct {
	mu     sync.Mutex
	events []models.SignalEvent
}

func (p *memPublisher) PublishSignal(_ context.Context, ev models.SignalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}
func (p *memPublisher) Close() error { return nil }

type memMetrics struct {
	lastClose map[string]float64
	recs      []models.Recommendation
	errs      []string
}

func (m *memMetrics) RecordUpstream(string, string, float64, error) {}
func (m *memMetrics) RecordError(kind string)                       { m.errs = append(m.errs, kind) }
func (m *memMetrics) RecordLastClose(t string, p float64)           { m.lastClose[t] = p }
func (m *memMetrics) RecordRecommendation(r models.Recommendation) {
	m.recs = append(m.recs, r)
}

type stubNarrator struct {
	got service.AnalysisInput
	err error
}

func (n *stubNarrator) Narrate(_ context.Context, in service.AnalysisInput) (string, error) {
	n.got = in
	return "Momentum is fading. Sell", n.err
}

func daily(closes ...float64) []models.PricePoint {
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Timestamp: t0.AddDate(0, 0, i), Close: c, Volume: uint64(1000 + i)}
	}
	return out
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func newStock(md *fakeMarket, n service.Narrator) (*StockUseCase, *memPublisher, *memMetrics) {
	pub := &memPublisher{}
	m := &memMetrics{lastClose: map[string]float64{}}
	uc := NewStockUseCase(md, n, pub, m, StockConfig{Indicators: technical.DefaultConfig(), MinPoints: 30}, nil)
	return uc, pub, m
}

func TestQuote(t *testing.T) {
	md := &fakeMarket{history: map[domrepo.Window][]models.PricePoint{
		domrepo.WindowQuote: daily(98, 99, 100, 100, 103.456),
	}}
	uc, pub, m := newStock(md, nil)

	q, err := uc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Ticker)
	assert.Equal(t, 103.46, q.LatestClose)
	assert.Equal(t, 3.46, q.ChangePct)
	assert.Equal(t, models.StrongBuy, q.Recommendation)

	uc.Wait()
	require.Len(t, pub.events, 1)
	assert.Equal(t, "quote", pub.events[0].Kind)
	assert.Equal(t, 103.46, m.lastClose["AAPL"])
	assert.Equal(t, []models.Recommendation{models.StrongBuy}, m.recs)
}

func TestQuote_Errors(t *testing.T) {
	md := &fakeMarket{history: map[domrepo.Window][]models.PricePoint{
		domrepo.WindowQuote: daily(100),
	}}
	uc, _, _ := newStock(md, nil)

	_, err := uc.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, technical.ErrInsufficientData)

	md.history[domrepo.WindowQuote] = daily(0, 5)
	_, err = uc.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, technical.ErrDegenerateInput)

	md.history[domrepo.WindowQuote] = nil
	_, err = uc.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, technical.ErrInsufficientData)

	md.historyErr = domrepo.ErrNotFound
	_, err = uc.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domrepo.ErrNotFound)
}

func TestIndicators(t *testing.T) {
	md := &fakeMarket{history: map[domrepo.Window][]models.PricePoint{
		domrepo.WindowIndicators: daily(ramp(40)...),
	}}
	uc, pub, _ := newStock(md, nil)

	set, err := uc.Indicators(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, set.SMA)
	assert.Equal(t, 129.5, *set.SMA)
	require.NotNil(t, set.RSI)
	assert.Equal(t, 100.0, *set.RSI)
	require.NotNil(t, set.MACD)
	require.NotNil(t, set.MACDSignal)
	require.NotNil(t, set.LatestVolume)
	assert.Equal(t, uint64(1039), *set.LatestVolume)

	uc.Wait()
	require.Len(t, pub.events, 1)
	assert.Equal(t, "indicators", pub.events[0].Kind)
}

func TestIndicators_BelowMinPoints(t *testing.T) {
	md := &fakeMarket{history: map[domrepo.Window][]models.PricePoint{
		domrepo.WindowIndicators: daily(ramp(29)...),
	}}
	uc, pub, m := newStock(md, nil)

	_, err := uc.Indicators(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, []string{"insufficient_data"}, m.errs)
	var ide *technical.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 30, ide.Need)
	assert.Equal(t, 29, ide.Have)

	uc.Wait()
	assert.Empty(t, pub.events)
}

func TestHistory(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)
	md := &fakeMarket{history: map[domrepo.Window][]models.PricePoint{
		{Range: "5d", Bar: "30m"}: {
			{Timestamp: t0, Close: 100.004},
			{Timestamp: t0.Add(30 * time.Minute), Close: 100.125},
		},
	}}
	uc, _, _ := newStock(md, nil)

	pts, err := uc.History(context.Background(), "AAPL", "1w")
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, models.HistoryPoint{Date: "2024-05-01 13:30", Close: 100}, pts[0])
	assert.Equal(t, models.HistoryPoint{Date: "2024-05-01 14:00", Close: 100.13}, pts[1])

	_, err = uc.History(context.Background(), "AAPL", "bogus")
	assert.ErrorIs(t, err, ErrNoHistory)
	assert.ErrorIs(t, err, domrepo.ErrNotFound)
	assert.Equal(t, domrepo.WindowDefault, md.lastWindow)
}

func TestFundamentals_UsesRequestedTicker(t *testing.T) {
	pe := 30.1
	md := &fakeMarket{fundamentals: models.Fundamentals{PERatio: &pe}}
	uc, _, _ := newStock(md, nil)

	f, err := uc.Fundamentals(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", f.Ticker)
	assert.Equal(t, 30.1, *f.PERatio)
}

func TestAnalysis(t *testing.T) {
	pe := 30.1
	md := &fakeMarket{
		fundamentals: models.Fundamentals{PERatio: &pe},
		history: map[domrepo.Window][]models.PricePoint{
			domrepo.WindowIndicators: daily(ramp(40)...),
		},
	}
	n := &stubNarrator{}
	uc, _, _ := newStock(md, n)

	a, err := uc.Analysis(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Momentum is fading. Sell", a.Analysis)
	assert.Equal(t, "AAPL", n.got.Ticker)
	assert.Equal(t, 30.1, *n.got.Fundamentals.PERatio)
	assert.NotNil(t, n.got.Indicators.RSI)
}

func TestAnalysis_Failures(t *testing.T) {
	md := &fakeMarket{history: map[domrepo.Window][]models.PricePoint{
		domrepo.WindowIndicators: daily(ramp(10)...),
	}}

	uc, _, _ := newStock(md, nil)
	_, err := uc.Analysis(context.Background(), "AAPL")
	assert.ErrorIs(t, err, service.ErrNarratorDisabled)

	uc, _, _ = newStock(md, &stubNarrator{})
	_, err = uc.Analysis(context.Background(), "AAPL")
	assert.ErrorIs(t, err, technical.ErrInsufficientData)
}

func TestSentiment_AllSources(t *testing.T) {
	md := &fakeMarket{
		options: models.OptionVolumes{Calls: 200, Puts: 150},
		short:   models.ShortStats{SharesShort: 1.2e8, FloatShares: 1.5e10},
	}
	news := &fakeNews{
		news: make([]models.NewsItem, 8),
		trends: []models.AnalystTrend{
			{Period: "2024-05-01", Buy: 20},
			{Period: "2024-04-01", Buy: 18},
		},
	}
	uc := NewSentimentUseCase(md, news, time.Second, nil)
	now := time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	s, err := uc.GetSentiment(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, s.PutCallRatio)
	assert.Equal(t, 0.75, *s.PutCallRatio)
	require.NotNil(t, s.ShortInterestPct)
	assert.Equal(t, 0.8, *s.ShortInterestPct)
	assert.Equal(t, "2024-05-01", s.AnalystSummary.Period)
	assert.Len(t, s.News, 5)
	assert.Nil(t, s.Errors)
	assert.Equal(t, now.AddDate(0, 0, -7), news.from)
	assert.Equal(t, now, news.to)
}

func TestSentiment_DegradesPerSource(t *testing.T) {
	md := &fakeMarket{
		options:  models.OptionVolumes{Calls: 0, Puts: 10},
		shortErr: errors.New("quote summary down"),
	}
	news := &fakeNews{newsErr: errors.New("finnhub down")}
	uc := NewSentimentUseCase(md, news, time.Second, nil)

	s, err := uc.GetSentiment(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, s.PutCallRatio)
	assert.Nil(t, s.ShortInterestPct)
	assert.Equal(t, &models.AnalystTrend{}, s.AnalystSummary)
	assert.Empty(t, s.News)
	assert.NotNil(t, s.News)
	assert.Equal(t, map[string]string{
		"short_interest_pct": "unavailable",
		"news":               "unavailable",
	}, s.Errors)
}

func TestSentiment_ErrorsDoNotEchoUpstreamText(t *testing.T) {
	md := &fakeMarket{shortErr: fmt.Errorf("history: %w", domrepo.ErrNotFound)}
	news := &fakeNews{newsErr: errors.New(`Get "https://finnhub.io/api/v1/company-news?token=SECRET-TOKEN-123": context deadline exceeded`)}
	uc := NewSentimentUseCase(md, news, time.Second, nil)

	s, err := uc.GetSentiment(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "not found", s.Errors["short_interest_pct"])
	assert.Equal(t, "unavailable", s.Errors["news"])

	body, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "SECRET-TOKEN-123")
}

func TestSentiment_RequiresTicker(t *testing.T) {
	uc := NewSentimentUseCase(&fakeMarket{}, &fakeNews{}, time.Second, nil)
	_, err := uc.GetSentiment(context.Background(), "")
	assert.Error(t, err)
}
