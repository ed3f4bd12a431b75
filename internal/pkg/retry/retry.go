// Package retry provides a small reusable retry policy so call sites do
// not each grow their own backoff loop.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried: how many attempts in
// total, the base backoff doubled after each failure, and which errors
// are worth retrying at all.
type Policy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	Retryable   func(error) bool
}

// Do runs op until it succeeds, exhausts the attempt budget, hits a
// non-retryable error, or the context is cancelled. The returned error is
// the last one op produced.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := p.BaseBackoff << (attempt - 1)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
