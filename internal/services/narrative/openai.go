package narrative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"StockLens/internal/domain/service"
	"StockLens/internal/services/upstream"
	applogger "StockLens/pkg/logger"
)

const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
)

// Config configures the OpenAI narrator.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Option configures OpenAINarrator.
type Option func(*narratorOptions)

type narratorOptions struct {
	httpClient *http.Client
	retry      *upstream.Policy
	logger     *applogger.Logger
}

// WithHTTPClient overrides the SDK transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *narratorOptions) { o.httpClient = hc }
}

// WithRetryPolicy overrides the retry schedule. Unset classifiers default to
// the chat completion ones.
func WithRetryPolicy(p upstream.Policy) Option {
	return func(o *narratorOptions) { o.retry = &p }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(o *narratorOptions) { o.logger = l }
}

// OpenAINarrator implements service.Narrator with OpenAI chat completions.
type OpenAINarrator struct {
	client      *openai.Client
	model       string
	temperature float64
	retry       upstream.Policy
	l           *applogger.Logger
}

var _ service.Narrator = (*OpenAINarrator)(nil)

// NewOpenAINarrator builds a narrator. Without an API key every call returns
// service.ErrNarratorDisabled.
func NewOpenAINarrator(cfg Config, opts ...Option) *OpenAINarrator {
	o := &narratorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if o.retry == nil {
		o.retry = &upstream.Policy{Attempts: cfg.MaxRetries + 1}
	}
	if o.logger == nil {
		o.logger = applogger.Nop()
	}

	n := &OpenAINarrator{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retry:       chatPolicy(*o.retry),
		l:           o.logger,
	}
	if cfg.APIKey == "" {
		return n
	}

	// retries follow n.retry
	oaOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		oaOpts = append(oaOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		oaOpts = append(oaOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	if o.httpClient != nil {
		oaOpts = append(oaOpts, option.WithHTTPClient(o.httpClient))
	}
	client := openai.NewClient(oaOpts...)
	n.client = &client
	return n
}

// Enabled reports whether an API key was configured.
func (n *OpenAINarrator) Enabled() bool { return n.client != nil }

// Narrate asks the model for a short outlook of in.Ticker.
func (n *OpenAINarrator) Narrate(ctx context.Context, in service.AnalysisInput) (string, error) {
	if n.client == nil {
		return "", service.ErrNarratorDisabled
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(n.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(in)),
		},
		Temperature: openai.Float(n.temperature),
	}

	start := time.Now()
	var completion *openai.ChatCompletion
	err := n.retry.Do(ctx, func() error {
		resp, callErr := n.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			n.l.Warn("chat completion failed",
				applogger.Ticker(in.Ticker),
				applogger.String("model", n.model),
				applogger.Error(callErr),
			)
			return callErr
		}
		completion = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("narrate %s: %w", in.Ticker, err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("narrate: empty completion")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	n.l.Info("chat completion ok",
		applogger.Ticker(in.Ticker),
		applogger.String("model", n.model),
		applogger.Int64("completion_tokens", completion.Usage.CompletionTokens),
		applogger.Duration("duration", time.Since(start)),
	)
	return text, nil
}
