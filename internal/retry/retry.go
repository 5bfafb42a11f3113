// Package retry provides a small executor that applies an explicit
// backoff policy to a function. Callers describe the schedule as a value
// instead of hiding it behind wrappers.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy configures retry behavior.
type Policy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64

	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries everything.
	Retryable func(error) bool
}

// Transport returns the policy used for source API calls.
func Transport() Policy {
	return Policy{
		Attempts:   3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// Model returns the policy used for language model calls, which face
// much longer rate-limit windows than the data source.
func Model() Policy {
	return Policy{
		Attempts:   5,
		BaseDelay:  10 * time.Second,
		MaxDelay:   120 * time.Second,
		Multiplier: 2.0,
	}
}

// Do executes fn with exponential backoff until it succeeds, the policy
// is exhausted, the error is not retryable, or ctx is canceled.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.delay(attempt-1)); err != nil {
				return err
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			if p.Retryable != nil && !p.Retryable(err) {
				return err
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// delay returns the backoff before try n+1 (n starts at 1).
func (p Policy) delay(n int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= p.Multiplier
	}
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
