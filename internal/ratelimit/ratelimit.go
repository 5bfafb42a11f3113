// Package ratelimit throttles outbound requests to the content source.
package ratelimit

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces calls at least one interval apart and adds a uniform
// random jitter on top, so traffic to the source never shows a fixed
// cadence. It is a pure delay primitive for a single sequential caller.
type Limiter struct {
	limiter *rate.Limiter

	// Jitter bounds, uniform between the two. Zero both to disable.
	JitterMin time.Duration
	JitterMax time.Duration
}

// New creates a limiter allowing requestsPerMinute calls with the
// default 0.5s–2s jitter.
func New(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Limiter{
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		JitterMin: 500 * time.Millisecond,
		JitterMax: 2 * time.Second,
	}
}

// Wait blocks until the next call is allowed or ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	jitter := l.jitter()
	if jitter <= 0 {
		return nil
	}
	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *Limiter) jitter() time.Duration {
	if l.JitterMax <= l.JitterMin {
		return l.JitterMin
	}
	return l.JitterMin + time.Duration(rand.Int63n(int64(l.JitterMax-l.JitterMin)))
}
