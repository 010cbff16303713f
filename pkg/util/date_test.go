package util

import (
	"testing"
	"time"
)

func TestLookbackDays(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	from, to := LookbackDays(now, 7)
	if FormatDate(from) != "2024-02-27" {
		t.Fatalf("unexpected from %s", FormatDate(from))
	}
	if !to.Equal(now) {
		t.Fatalf("unexpected to %v", to)
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 3, 5, 10, 7, 31, 0, time.UTC)
	to := from.Add(time.Hour)
	f, tt := AlignFromTo(from, to, 5*time.Minute)
	if f.Minute() != 5 || f.Second() != 0 {
		t.Fatalf("unexpected from %v", f)
	}
	if tt.Minute() != 5 {
		t.Fatalf("unexpected to %v", tt)
	}
}

func TestNormalizeTicker(t *testing.T) {
	if got := NormalizeTicker("  brk.b "); got != "BRK.B" {
		t.Fatalf("unexpected ticker %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("a, b,,c ")
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("unexpected list %v", got)
	}
}
