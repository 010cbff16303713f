package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	domrepo "StockLens/internal/domain/repository"
	xhttp "StockLens/pkg/http"
)

// HTTPServiceBase provides a DRY foundation for market data HTTP clients.
// It centralizes client construction, JSON GET handling and upstream metrics.
type HTTPServiceBase struct {
	source  string
	baseURL string
	client  *xhttp.Client
	metrics domrepo.Metrics
	backoff time.Duration
}

// Option configures HTTPServiceBase.
type Option func(*HTTPServiceBase)

// WithMetrics records every call under the base's source label.
func WithMetrics(m domrepo.Metrics) Option {
	return func(b *HTTPServiceBase) {
		if m != nil {
			b.metrics = m
		}
	}
}

// WithBackoff sets the linear retry step.
func WithBackoff(d time.Duration) Option {
	return func(b *HTTPServiceBase) {
		b.backoff = d
	}
}

// NewHTTPServiceBase wraps client for requests under baseURL.
func NewHTTPServiceBase(source, baseURL string, client *xhttp.Client, opts ...Option) *HTTPServiceBase {
	b := &HTTPServiceBase{
		source:  source,
		baseURL: baseURL,
		client:  client,
		backoff: defaultStep,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BaseURL returns the configured base URL.
func (b *HTTPServiceBase) BaseURL() string { return b.baseURL }

// GetJSON fetches `path` (already escaped, see xhttp.JoinURL) under baseURL and
// decodes JSON into dest. op labels the call in metrics.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, op, path string, query map[string][]string, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("%s http client not initialized", b.source)
	}
	start := time.Now()
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         strings.TrimRight(b.baseURL, "/") + path,
		QueryParams: query,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	}, dest)
	if b.metrics != nil {
		b.metrics.RecordUpstream(b.source, op, time.Since(start).Seconds(), err)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", b.source, op, err)
	}
	return nil
}

// GetJSONWithRetry retries transient failures up to `attempts` times in total.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, op, path string, query map[string][]string, dest interface{}, attempts int) error {
	p := Policy{Attempts: attempts, Step: b.backoff}
	return p.Do(ctx, func() error {
		return b.GetJSON(ctx, op, path, query, dest)
	})
}

// Retryable reports whether err is a timeout, a throttling response or a 5xx.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests ||
			se.StatusCode == http.StatusRequestTimeout ||
			se.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
