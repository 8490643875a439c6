package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_NoBlockWhenZeroRPS(t *testing.T) {
	limiter := NewLimiter(0, 0.5)

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Error("limiter with 0 RPS should not block")
	}
}

func TestLimiter_PacesWaits(t *testing.T) {
	limiter := NewLimiter(10, 0) // 100ms interval
	defer limiter.Stop()
	ctx := context.Background()

	// First call is free; it reserves the slot the second call waits for.
	_ = limiter.Wait(ctx)

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := time.Since(start); d < 50*time.Millisecond || d > 200*time.Millisecond {
		t.Errorf("expected wait around 100ms, took %v", d)
	}
}

func TestLimiter_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(1, 0)
	defer limiter.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected context canceled error")
	}
}

func TestLimiter_JitterWithinBounds(t *testing.T) {
	limiter := NewLimiter(10, 0.5)
	defer limiter.Stop()
	ctx := context.Background()

	_ = limiter.Wait(ctx)

	start := time.Now()
	_ = limiter.Wait(ctx)

	// Interval 100ms, jitter adds at most 50ms on top.
	if d := time.Since(start); d < 50*time.Millisecond || d > 300*time.Millisecond {
		t.Errorf("jittered wait out of bounds: %v", d)
	}
}
