package repository

import "time"

// Window is a lookback range sampled at a bar size, both in vendor notation
// ("5d", "1mo", "1y" / "5m", "30m", "1d").
type Window struct {
	Range string
	Bar   string
}

var (
	WindowQuote      = Window{Range: "5d", Bar: "1d"}
	WindowIndicators = Window{Range: "1y", Bar: "1d"}
	WindowDefault    = Window{Range: "1mo", Bar: "1d"}
)

var chartWindows = map[string]Window{
	"1d": {Range: "1d", Bar: "5m"},
	"1w": {Range: "5d", Bar: "30m"},
	"1m": {Range: "1mo", Bar: "1d"},
	"6m": {Range: "6mo", Bar: "1d"},
}

// IsValidInterval returns true if iv is a known chart interval.
func IsValidInterval(iv string) bool {
	_, ok := chartWindows[iv]
	return ok
}

// WindowForInterval converts a chart interval to its window; unknown values
// fall back to one month of daily bars.
func WindowForInterval(iv string) Window {
	if w, ok := chartWindows[iv]; ok {
		return w
	}
	return WindowDefault
}

// RangeDuration approximates the lookback of w.Range.
func (w Window) RangeDuration() time.Duration {
	return parseVendorDuration(w.Range, 30*24*time.Hour)
}

// BarDuration returns the bar size of w.
func (w Window) BarDuration() time.Duration {
	return parseVendorDuration(w.Bar, 24*time.Hour)
}

func parseVendorDuration(s string, def time.Duration) time.Duration {
	switch s {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "1d":
		return 24 * time.Hour
	case "5d":
		return 5 * 24 * time.Hour
	case "1mo":
		return 30 * 24 * time.Hour
	case "6mo":
		return 182 * 24 * time.Hour
	case "1y":
		return 365 * 24 * time.Hour
	default:
		return def
	}
}
