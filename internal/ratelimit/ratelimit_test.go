package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitSpacesCalls(t *testing.T) {
	// 1200 rpm -> 50ms interval, jitter disabled for a deterministic check.
	l := New(1200)
	l.JitterMin, l.JitterMax = 0, 0

	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	startSecond := time.Now()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(startSecond); elapsed < 40*time.Millisecond {
		t.Fatalf("second call only waited %v, want >= interval", elapsed)
	}
}

func TestWaitHonorsCancel(t *testing.T) {
	l := New(1) // 60s interval
	l.JitterMin, l.JitterMax = 0, 0

	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestJitterWithinBounds(t *testing.T) {
	l := New(20)
	l.JitterMin = 10 * time.Millisecond
	l.JitterMax = 20 * time.Millisecond

	for i := 0; i < 100; i++ {
		j := l.jitter()
		if j < l.JitterMin || j >= l.JitterMax {
			t.Fatalf("jitter %v outside [%v, %v)", j, l.JitterMin, l.JitterMax)
		}
	}
}
