package util

import "time"

// DateLayout is the calendar date format used by upstream query strings.
const DateLayout = "2006-01-02"

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// LookbackDays returns the [now-days, now] range.
func LookbackDays(now time.Time, days int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -days), now
}

// AlignFromTo rounds the time range down to bar boundaries.
func AlignFromTo(from, to time.Time, bar time.Duration) (time.Time, time.Time) {
	if bar <= 0 {
		bar = time.Minute
	}
	return from.Truncate(bar), to.Truncate(bar)
}
