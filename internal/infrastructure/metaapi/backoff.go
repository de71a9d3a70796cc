package metaapi

import (
	"context"
	"time"
)

// RetryPolicy parameterizes bounded retry with growing delay. One policy
// serves both the pagination backoff (with page-size shrinking) and the
// whole-call retry of transient failures; the two differ only in numbers.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, the first included
	MaxAttempts int
	// BaseDelay is the wait after the first failure; each further failure
	// doubles it
	BaseDelay time.Duration
	// MaxElapsed caps the total time spent waiting across all attempts,
	// zero means no cap
	MaxElapsed time.Duration
}

// PaginationRetryPolicy is the default policy for rate-limited page fetches.
var PaginationRetryPolicy = RetryPolicy{
	MaxAttempts: 4,
	BaseDelay:   500 * time.Millisecond,
	MaxElapsed:  10 * time.Second,
}

// TransientRetryPolicy is the default policy for whole-call retry of
// transient failures, deliberately shorter than the pagination policy.
var TransientRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxElapsed:  5 * time.Second,
}

// Delay returns the wait before the given retry. attempt counts failures so
// far, starting at 1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Do runs fn under the policy, retrying while retryable(err) is true. It
// returns the last error when attempts or the elapsed budget run out, and
// stops early when the context is cancelled.
func (p RetryPolicy) Do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	start := time.Now()
	var err error

	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			return err
		}
		if p.MaxElapsed > 0 && time.Since(start) >= p.MaxElapsed {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}
}

// Page size bounds for the adaptive pagination walk.
const (
	// DefaultPageSize is the initial page size requested from listing
	// endpoints
	DefaultPageSize = 100
	// MinPageSize is the floor the shrink policy never goes below
	MinPageSize = 10
)

// ShrinkPageSize halves the page size, flooring at MinPageSize.
func ShrinkPageSize(current int) int {
	next := current / 2
	if next < MinPageSize {
		return MinPageSize
	}
	return next
}
