package upstream

import (
	"context"
	"errors"
	"time"

	xhttp "StockLens/pkg/http"
)

const (
	defaultStep = 50 * time.Millisecond
	// maxRetryAfter bounds how long a call waits on an upstream Retry-After.
	maxRetryAfter = 2 * time.Second
)

// Policy is the retry schedule shared by every upstream client. Attempt i
// waits i*Step, or the upstream's Retry-After hint when that is longer, and
// gives up when the hint exceeds MaxWait.
type Policy struct {
	Attempts int
	Step     time.Duration
	MaxWait  time.Duration
	// Retryable classifies failures; nil means the package-level Retryable.
	Retryable func(error) bool
	// RetryAfter extracts the upstream hint; nil reads xhttp.StatusError.
	RetryAfter func(error) time.Duration
}

// Do calls fn until it succeeds, fails permanently, exhausts Attempts or
// ctx is done.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	for i := 1; ; i++ {
		err := fn()
		if err == nil || i >= p.Attempts || !p.retryable(err) {
			return err
		}
		wait, ok := p.delay(i, err)
		if !ok {
			return err
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return Retryable(err)
}

func (p Policy) delay(i int, err error) (time.Duration, bool) {
	step, limit := p.Step, p.MaxWait
	if step <= 0 {
		step = defaultStep
	}
	if limit <= 0 {
		limit = maxRetryAfter
	}
	hint := statusRetryAfter
	if p.RetryAfter != nil {
		hint = p.RetryAfter
	}

	wait := time.Duration(i) * step
	if ra := hint(err); ra > wait {
		if ra > limit {
			return 0, false
		}
		wait = ra
	}
	return wait, true
}

func statusRetryAfter(err error) time.Duration {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}
