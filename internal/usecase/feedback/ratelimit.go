package feedback

import (
	"sync"
	"time"
)

// rateLimiter is a sliding-window request limiter. Analysis calls are
// expensive; exhausting the window returns RATE_LIMITED to the caller
// before any backend work happens.
type rateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	requests []time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		window: window,
		max:    max,
	}
}

// Allow records and permits a request if the window has capacity.
func (rl *rateLimiter) Allow() bool {
	if rl.max <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	kept := rl.requests[:0]
	for _, t := range rl.requests {
		if now.Sub(t) < rl.window {
			kept = append(kept, t)
		}
	}
	rl.requests = kept

	if len(rl.requests) >= rl.max {
		return false
	}
	rl.requests = append(rl.requests, now)
	return true
}

// WaitTime reports how long until the oldest in-window request expires.
func (rl *rateLimiter) WaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.requests) == 0 {
		return 0
	}
	remaining := rl.window - time.Since(rl.requests[0])
	if remaining < 0 {
		return 0
	}
	return remaining
}
