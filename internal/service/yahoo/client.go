package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/cookiejar"
	"sort"
	"strings"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/services/upstream"
	xhttp "StockLens/pkg/http"
)

const (
	DefaultChartURL = "https://query1.finance.yahoo.com"
	DefaultQuoteURL = "https://query2.finance.yahoo.com"
	DefaultUA       = "Mozilla/5.0"
	source          = "yahoo"
)

// Config holds Yahoo Finance endpoints and call policy.
type Config struct {
	ChartURL  string
	QuoteURL  string
	CookieURL string
	UserAgent string
	Timeout   time.Duration
	Attempts  int
}

// Option configures Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	metrics    domrepo.Metrics
}

// WithHTTPClient replaces the transport, e.g. with a go-vcr recorder.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithMetrics records upstream latency and failures.
func WithMetrics(m domrepo.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Client implements repository.MarketData on top of Yahoo Finance JSON APIs.
type Client struct {
	chart    *upstream.HTTPServiceBase
	quote    *upstream.HTTPServiceBase
	attempts int
	session  *crumbSession
}

var _ domrepo.MarketData = (*Client)(nil)

// NewClient creates a Yahoo client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.ChartURL == "" {
		cfg.ChartURL = DefaultChartURL
	}
	if cfg.QuoteURL == "" {
		cfg.QuoteURL = DefaultQuoteURL
	}
	if cfg.CookieURL == "" {
		cfg.CookieURL = DefaultCookieURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUA
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 2
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	jar, _ := cookiejar.New(nil)
	copts := []xhttp.ClientOption{
		xhttp.WithTimeout(cfg.Timeout),
		xhttp.WithHeader("User-Agent", cfg.UserAgent),
		xhttp.WithCookieJar(jar),
	}
	if o.httpClient != nil {
		copts = append(copts, xhttp.WithHTTPClient(o.httpClient))
	}
	hc := xhttp.NewClient(copts...)

	bopts := []upstream.Option{upstream.WithMetrics(o.metrics)}
	return &Client{
		chart:    upstream.NewHTTPServiceBase(source, cfg.ChartURL, hc, bopts...),
		quote:    upstream.NewHTTPServiceBase(source, cfg.QuoteURL, hc, bopts...),
		attempts: cfg.Attempts,
		session: &crumbSession{
			hc:        hc,
			cookieURL: cfg.CookieURL,
			crumbURL:  xhttp.JoinURL(cfg.QuoteURL) + crumbPath,
		},
	}
}

// History returns the closes and volumes of ticker over w, ascending by time.
// Bars with a null close are dropped; an unknown ticker yields ErrNotFound.
func (c *Client) History(ctx context.Context, ticker string, w domrepo.Window) ([]models.PricePoint, error) {
	var resp chartResponse
	path := xhttp.JoinURL("", "v8", "finance", "chart", ticker)
	query := map[string][]string{"interval": {w.Bar}, "range": {w.Range}}
	if err := c.chart.GetJSONWithRetry(ctx, "chart", path, query, &resp, c.attempts); err != nil {
		return nil, mapErr(err)
	}
	if e := resp.Chart.Error; e != nil {
		return nil, apiErr(e)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := r.Indicators.Quote[0]

	out := make([]models.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil || !isFinite(*q.Close[i]) {
			continue
		}
		p := models.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *q.Close[i],
		}
		if i < len(q.Volume) && q.Volume[i] != nil && *q.Volume[i] > 0 {
			p.Volume = uint64(*q.Volume[i])
		}
		out = append(out, p)
	}
	return normalize(out), nil
}

// Fundamentals returns valuation ratios of ticker.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (models.Fundamentals, error) {
	resp, err := c.summary(ctx, ticker)
	if err != nil {
		return models.Fundamentals{}, err
	}
	r := resp.QuoteSummary.Result[0]
	return models.Fundamentals{
		Ticker:       ticker,
		PERatio:      r.SummaryDetail.TrailingPE.Raw,
		PBRatio:      r.DefaultKeyStatistics.PriceToBook.Raw,
		EVToEBITDA:   r.DefaultKeyStatistics.EnterpriseToEbitda.Raw,
		DebtToEquity: r.FinancialData.DebtToEquity.Raw,
		FreeCashFlow: r.FinancialData.FreeCashflow.Raw,
	}, nil
}

// ShortStats returns shares short and float of ticker; unknown values are 0.
func (c *Client) ShortStats(ctx context.Context, ticker string) (models.ShortStats, error) {
	resp, err := c.summary(ctx, ticker)
	if err != nil {
		return models.ShortStats{}, err
	}
	ks := resp.QuoteSummary.Result[0].DefaultKeyStatistics
	return models.ShortStats{
		SharesShort: deref(ks.SharesShort.Raw),
		FloatShares: deref(ks.FloatShares.Raw),
	}, nil
}

// NearestOptionVolumes sums call and put volume of the nearest expiry.
func (c *Client) NearestOptionVolumes(ctx context.Context, ticker string) (models.OptionVolumes, error) {
	var resp optionsResponse
	path := xhttp.JoinURL("", "v7", "finance", "options", ticker)
	err := c.withCrumb(ctx, func(crumb string) error {
		query := map[string][]string{"crumb": {crumb}}
		return c.quote.GetJSONWithRetry(ctx, "options", path, query, &resp, c.attempts)
	})
	if err != nil {
		return models.OptionVolumes{}, mapErr(err)
	}
	if e := resp.OptionChain.Error; e != nil {
		return models.OptionVolumes{}, apiErr(e)
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return models.OptionVolumes{}, fmt.Errorf("option chain %s: %w", ticker, domrepo.ErrNotFound)
	}

	chain := resp.OptionChain.Result[0].Options[0]
	return models.OptionVolumes{
		Expiry: time.Unix(chain.ExpirationDate, 0).UTC(),
		Calls:  sumVolume(chain.Calls),
		Puts:   sumVolume(chain.Puts),
	}, nil
}

func (c *Client) summary(ctx context.Context, ticker string) (*quoteSummaryResponse, error) {
	var resp quoteSummaryResponse
	path := xhttp.JoinURL("", "v10", "finance", "quoteSummary", ticker)
	err := c.withCrumb(ctx, func(crumb string) error {
		query := map[string][]string{
			"modules": {"defaultKeyStatistics,summaryDetail,financialData"},
			"crumb":   {crumb},
		}
		return c.quote.GetJSONWithRetry(ctx, "quote_summary", path, query, &resp, c.attempts)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, apiErr(e)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary %s: %w", ticker, domrepo.ErrNotFound)
	}
	return &resp, nil
}

func mapErr(err error) error {
	if xhttp.IsStatus(err, http.StatusNotFound) {
		return fmt.Errorf("%w: %v", domrepo.ErrNotFound, err)
	}
	return err
}

func apiErr(e *apiError) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("yahoo: %s: %w", e.Description, domrepo.ErrNotFound)
	}
	return errors.New("yahoo: " + e.Code + ": " + e.Description)
}

// normalize sorts by time and keeps the last bar of duplicated timestamps.
func normalize(in []models.PricePoint) []models.PricePoint {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Timestamp.Before(in[j].Timestamp) })
	out := in[:0]
	for _, p := range in {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(p.Timestamp) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func sumVolume(cs []optionContract) uint64 {
	var total uint64
	for _, c := range cs {
		if c.Volume != nil && *c.Volume > 0 {
			total += uint64(*c.Volume)
		}
	}
	return total
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
