package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
	"StockLens/internal/domain/service"
	"StockLens/internal/services/upstream"
)

func f(v float64) *float64 { return &v }

func sampleInput() service.AnalysisInput {
	return service.AnalysisInput{
		Ticker: "AAPL",
		Fundamentals: models.Fundamentals{
			Ticker:  "AAPL",
			PERatio: f(28.5),
			PBRatio: f(45.1),
		},
		Indicators: models.IndicatorSet{RSI: f(61.27), MACD: f(-1.5)},
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleInput())

	assert.Contains(t, p, "outlook for AAPL:")
	assert.Contains(t, p, "- PE Ratio: 28.5\n")
	assert.Contains(t, p, "- EV/EBITDA: n/a\n")
	assert.Contains(t, p, "- RSI: 61.27\n")
	assert.Contains(t, p, "- MACD: -1.5\n")
	assert.Contains(t, p, "End with one of: Strong Buy, Buy, Sell, Strong Sell.")
}

const completionBody = `{"id":"chatcmpl-1","object":"chat.completion","created":1714557600,"model":"gpt-3.5-turbo",
"choices":[{"index":0,"finish_reason":"stop","logprobs":null,"message":{"role":"assistant","content":"  Solid momentum. Buy  "}}],
"usage":{"prompt_tokens":80,"completion_tokens":12,"total_tokens":92}}`

func TestNarrate(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		assert.Equal(t, 0.7, body.Temperature)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)

		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	n := NewOpenAINarrator(
		Config{APIKey: "sk-test", BaseURL: srv.URL + "/"},
		WithRetryPolicy(upstream.Policy{Attempts: 3, Step: time.Millisecond}),
	)
	require.True(t, n.Enabled())

	text, err := n.Narrate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "Solid momentum. Buy", text)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestNarrate_ClientErrorIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	n := NewOpenAINarrator(
		Config{APIKey: "sk-test", BaseURL: srv.URL + "/"},
		WithRetryPolicy(upstream.Policy{Attempts: 4, Step: time.Millisecond}),
	)
	_, err := n.Narrate(context.Background(), sampleInput())
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestNarrate_Disabled(t *testing.T) {
	n := NewOpenAINarrator(Config{})
	assert.False(t, n.Enabled())

	_, err := n.Narrate(context.Background(), sampleInput())
	assert.ErrorIs(t, err, service.ErrNarratorDisabled)
}

func TestNarrate_HonorsRetryAfter(t *testing.T) {
	var hits int32
	var first, gap atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UnixNano()
		if atomic.AddInt32(&hits, 1) == 1 {
			first.Store(now)
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
			return
		}
		gap.Store(now - first.Load())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	n := NewOpenAINarrator(
		Config{APIKey: "sk-test", BaseURL: srv.URL + "/"},
		WithRetryPolicy(upstream.Policy{Attempts: 2, Step: time.Millisecond}),
	)
	_, err := n.Narrate(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
	assert.GreaterOrEqual(t, time.Duration(gap.Load()), 900*time.Millisecond)
}

func TestRetryableChat(t *testing.T) {
	assert.True(t, retryableChat(&openai.Error{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, retryableChat(&openai.Error{StatusCode: http.StatusBadGateway}))
	assert.False(t, retryableChat(&openai.Error{StatusCode: http.StatusUnauthorized}))
	assert.True(t, retryableChat(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.False(t, retryableChat(context.Canceled))
}
