package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func testLimiter(perMinute, perDay int, window time.Duration) *Limiter {
	l := NewLimiter(perMinute, perDay)
	l.window = window
	return l
}

func TestLimiterAcquireWithinWindow(t *testing.T) {
	l := testLimiter(3, 10, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("acquisitions within the window should not block, took %v", elapsed)
	}
}

func TestLimiterWaitsForWindowToClear(t *testing.T) {
	l := testLimiter(2, 10, 150*time.Millisecond)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	// Window is full; the third call must wait for the oldest entry to age
	// out (plus the safety buffer).
	start := time.Now()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("third Acquire failed: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 100*time.Millisecond {
		t.Errorf("third Acquire resolved after %v, expected a wait near the window size", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("third Acquire took %v, expected roughly one window", elapsed)
	}
}

func TestLimiterDailyQuota(t *testing.T) {
	l := testLimiter(10, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}

	err := l.Acquire(ctx)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got: %v", err)
	}
}

func TestLimiterQuotaBeatsWindowWait(t *testing.T) {
	// With both the window and the quota exhausted, the quota error must
	// surface immediately instead of waiting for the window.
	l := testLimiter(1, 1, time.Minute)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	start := time.Now()
	err := l.Acquire(ctx)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("quota failure should be immediate, took %v", elapsed)
	}
}

func TestLimiterDailyReset(t *testing.T) {
	l := testLimiter(10, 1, time.Minute)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Pretend the day window started more than 24h ago.
	l.mu.Lock()
	l.dayStart = time.Now().Add(-25 * time.Hour)
	l.mu.Unlock()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire after day reset failed: %v", err)
	}
}

func TestLimiterContextCancellation(t *testing.T) {
	l := testLimiter(1, 10, time.Minute)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got: %v", err)
	}
}

func TestLimiterConcurrentAcquire(t *testing.T) {
	l := testLimiter(5, 100, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Acquire(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Acquire failed: %v", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timestamps) != 5 {
		t.Errorf("expected 5 recorded requests, got %d", len(l.timestamps))
	}
	if l.dailyCount != 5 {
		t.Errorf("expected daily count 5, got %d", l.dailyCount)
	}
}
