package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"StockLens/internal/domain/models"
	drepo "StockLens/internal/domain/repository"
	"StockLens/internal/services/upstream"
	xhttp "StockLens/pkg/http"
	"StockLens/pkg/util"
)

const DefaultBaseURL = "https://finnhub.io/api/v1"

// ErrMissingAPIKey is returned when no token is configured.
var ErrMissingAPIKey = errors.New("finnhub: api key not configured")

// Client implements repository.NewsProvider backed by the Finnhub REST API.
type Client struct {
	apiKey   string
	base     *upstream.HTTPServiceBase
	attempts int
}

var _ drepo.NewsProvider = (*Client)(nil)

// tokenHeader carries the API key so it never appears in request URLs.
const tokenHeader = "X-Finnhub-Token"

// New creates a Finnhub REST client. An empty baseURL selects the public API.
func New(apiKey, baseURL string, timeout time.Duration, m drepo.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithHeader(tokenHeader, apiKey))
	return &Client{
		apiKey:   apiKey,
		base:     upstream.NewHTTPServiceBase("finnhub", baseURL, hc, upstream.WithMetrics(m)),
		attempts: 2,
	}
}

type newsItem struct {
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

type recommendation struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// CompanyNews returns news published for ticker between from and to (dates, inclusive).
func (c *Client) CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsItem, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var raw []newsItem
	query := map[string][]string{
		"symbol": {ticker},
		"from":   {util.FormatDate(from)},
		"to":     {util.FormatDate(to)},
	}
	if err := c.base.GetJSONWithRetry(ctx, "company_news", "/company-news", query, &raw, c.attempts); err != nil {
		return nil, c.mapErr(err)
	}

	out := make([]models.NewsItem, 0, len(raw))
	for _, n := range raw {
		out = append(out, models.NewsItem{
			Headline: n.Headline,
			Source:   n.Source,
			URL:      n.URL,
			Summary:  n.Summary,
			Image:    n.Image,
			Datetime: time.Unix(n.Datetime, 0).UTC(),
		})
	}
	return out, nil
}

// RecommendationTrends returns analyst recommendation counts, most recent period first.
func (c *Client) RecommendationTrends(ctx context.Context, ticker string) ([]models.AnalystTrend, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	var raw []recommendation
	query := map[string][]string{
		"symbol": {ticker},
	}
	if err := c.base.GetJSONWithRetry(ctx, "recommendation", "/stock/recommendation", query, &raw, c.attempts); err != nil {
		return nil, c.mapErr(err)
	}

	out := make([]models.AnalystTrend, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.AnalystTrend(r))
	}
	// periods are ISO dates, so string order is time order
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period > out[j].Period })
	return out, nil
}

func (c *Client) mapErr(err error) error {
	switch {
	case xhttp.IsStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %v", drepo.ErrNotFound, err)
	case xhttp.IsStatus(err, http.StatusUnauthorized), xhttp.IsStatus(err, http.StatusForbidden):
		return fmt.Errorf("finnhub: rejected api key: %w", err)
	default:
		return err
	}
}
