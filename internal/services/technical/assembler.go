package technical

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"StockLens/internal/domain/models"
)

// Config holds the indicator windows.
type Config struct {
	SMAWindow  int
	EMASpan    int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	RSIWindow  int
}

// DefaultConfig returns SMA(20), EMA(20), MACD(12,26,9) and RSI(14).
func DefaultConfig() Config {
	return Config{
		SMAWindow:  20,
		EMASpan:    20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		RSIWindow:  14,
	}
}

// Validate checks that every window is positive and the MACD spans are ordered.
func (c Config) Validate() error {
	var problems []string
	if c.SMAWindow < 1 {
		problems = append(problems, fmt.Sprintf("sma window %d", c.SMAWindow))
	}
	if c.EMASpan < 1 {
		problems = append(problems, fmt.Sprintf("ema span %d", c.EMASpan))
	}
	if c.MACDFast < 1 || c.MACDSlow <= c.MACDFast {
		problems = append(problems, fmt.Sprintf("macd spans %d/%d", c.MACDFast, c.MACDSlow))
	}
	if c.MACDSignal < 1 {
		problems = append(problems, fmt.Sprintf("macd signal %d", c.MACDSignal))
	}
	if c.RSIWindow < 1 {
		problems = append(problems, fmt.Sprintf("rsi window %d", c.RSIWindow))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, ", "), ErrInvalidParameter)
	}
	return nil
}

// MinPoints is the length at which every configured indicator is defined.
func (c Config) MinPoints() int {
	n := c.MACDSlow + 1
	for _, v := range []int{c.SMAWindow, c.EMASpan, c.RSIWindow + 1} {
		if v > n {
			n = v
		}
	}
	return n
}

// Round2 rounds x to two decimals, half away from zero, on the shortest
// decimal representation of x.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Compute builds the indicator set of s. Indicators whose floor the series does
// not reach are left nil; any other failure aborts the whole set.
func Compute(s Series, cfg Config) (models.IndicatorSet, error) {
	var out models.IndicatorSet
	if err := cfg.Validate(); err != nil {
		return out, err
	}
	if err := s.Require("indicators", 1); err != nil {
		return out, err
	}
	closes := s.Closes()

	sma, err := SMA(closes, cfg.SMAWindow)
	if out.SMA, err = keep(sma, err); err != nil {
		return models.IndicatorSet{}, err
	}
	ema, err := EMA(closes, cfg.EMASpan)
	if out.EMA, err = keep(ema, err); err != nil {
		return models.IndicatorSet{}, err
	}
	macd, err := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	if out.MACD, err = keep(macd.Line, err); err != nil {
		return models.IndicatorSet{}, err
	}
	if out.MACD != nil {
		out.MACDSignal = ptr(Round2(macd.Signal))
	}
	rsi, err := RSI(closes, cfg.RSIWindow)
	if out.RSI, err = keep(rsi, err); err != nil {
		return models.IndicatorSet{}, err
	}

	vol := s.Latest().Volume
	out.LatestVolume = &vol
	return out, nil
}

// AssembleQuote rounds a change into a quote record.
func AssembleQuote(ticker string, ch Change) models.Quote {
	return models.Quote{
		Ticker:         ticker,
		LatestClose:    Round2(ch.Latest),
		ChangePct:      Round2(ch.Pct),
		Recommendation: Classify(ch.Pct),
	}
}

// keep rounds v when err is nil, swallows insufficient data and passes other errors through.
func keep(v float64, err error) (*float64, error) {
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return nil, nil
		}
		return nil, err
	}
	return ptr(Round2(v)), nil
}

func ptr[T any](v T) *T { return &v }
