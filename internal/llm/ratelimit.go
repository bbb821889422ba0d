package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	defaultRequestsPerMinute = 10
	defaultRequestsPerDay    = 1500

	// Added to window waits so the re-check after sleeping lands strictly
	// outside the window.
	waitBuffer = 50 * time.Millisecond
)

// ErrQuotaExceeded reports that the daily request budget is spent. It is
// terminal for the current call; the window resets on its own.
var ErrQuotaExceeded = errors.New("daily API request limit exceeded, please try again tomorrow")

// Limiter gates outbound requests to the LLM API by a sliding per-minute
// window and a hard per-day quota. Every billable call (file uploads and
// generation requests alike) must go through Acquire first. The same
// Limiter instance is shared by all callers in the process.
type Limiter struct {
	mu         sync.Mutex
	perMinute  int
	perDay     int
	window     time.Duration
	timestamps []time.Time
	dailyCount int
	dayStart   time.Time
}

func NewLimiter(perMinute, perDay int) *Limiter {
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	if perDay <= 0 {
		perDay = defaultRequestsPerDay
	}
	return &Limiter{
		perMinute: perMinute,
		perDay:    perDay,
		window:    time.Minute,
		dayStart:  time.Now(),
	}
}

// Acquire blocks until a request slot is free, then records the request.
// It fails fast with ErrQuotaExceeded once the daily budget is spent,
// regardless of the per-minute window state. The check-and-record step is
// serialized, so concurrent callers can never claim the same slot.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()

		if now.Sub(l.dayStart) > 24*time.Hour {
			l.dailyCount = 0
			l.dayStart = now
		}
		if l.dailyCount >= l.perDay {
			l.mu.Unlock()
			return ErrQuotaExceeded
		}

		// Drop entries that have left the trailing window.
		kept := l.timestamps[:0]
		for _, t := range l.timestamps {
			if now.Sub(t) < l.window {
				kept = append(kept, t)
			}
		}
		l.timestamps = kept

		if len(l.timestamps) < l.perMinute {
			l.timestamps = append(l.timestamps, now)
			l.dailyCount++
			l.mu.Unlock()
			return nil
		}

		// Window full: wait until the oldest entry exits, then re-check.
		// Another caller may have taken the slot during the wait.
		wait := l.window - now.Sub(l.timestamps[0]) + waitBuffer
		l.mu.Unlock()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
