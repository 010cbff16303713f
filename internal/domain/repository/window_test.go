package repository

import (
	"testing"
	"time"
)

func TestWindowForInterval(t *testing.T) {
	cases := map[string]Window{
		"1d":  {Range: "1d", Bar: "5m"},
		"1w":  {Range: "5d", Bar: "30m"},
		"1m":  {Range: "1mo", Bar: "1d"},
		"6m":  {Range: "6mo", Bar: "1d"},
		"":    WindowDefault,
		"10y": WindowDefault,
	}
	for in, want := range cases {
		if got := WindowForInterval(in); got != want {
			t.Fatalf("WindowForInterval(%q) = %+v, want %+v", in, got, want)
		}
	}
	if IsValidInterval("3m") {
		t.Fatalf("3m should not be valid")
	}
}

func TestWindowDurations(t *testing.T) {
	w := WindowForInterval("1w")
	if w.RangeDuration() != 5*24*time.Hour {
		t.Fatalf("range = %s", w.RangeDuration())
	}
	if w.BarDuration() != 30*time.Minute {
		t.Fatalf("bar = %s", w.BarDuration())
	}
}
