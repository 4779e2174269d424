// Package ratelimit implements per-client sliding-window admission control.
// Each client identity is bounded to a fixed number of requests within a
// trailing time window; state is held in memory for the process lifetime.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks recent request timestamps per client identity and admits
// or rejects requests against a sliding window. It is safe for concurrent
// use by multiple goroutines.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu       sync.Mutex
	requests map[string][]time.Time
}

// New creates a Limiter admitting at most maxRequests per identity within
// the trailing window. Both values are fixed at construction.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
	}
}

// Allow reports whether a request from the given identity is admitted at
// time now. Admitted requests are recorded; rejected requests leave the
// identity's state unmodified. Timestamps older than the window are pruned
// on every call.
//
// Identity entries are never evicted once created, so the map grows with
// the number of distinct identities seen over the process lifetime.
func (l *Limiter) Allow(identity string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	recent := l.requests[identity][:0]
	for _, t := range l.requests[identity] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.maxRequests {
		l.requests[identity] = recent
		return false
	}

	l.requests[identity] = append(recent, now)
	return true
}

// RetryAfter returns how long the identity must wait before its oldest
// retained request leaves the window. Returns zero when the identity is
// under its limit.
func (l *Limiter) RetryAfter(identity string, now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.requests[identity]
	if len(recent) < l.maxRequests {
		return 0
	}

	wait := recent[0].Add(l.window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Identities returns the number of tracked client identities.
func (l *Limiter) Identities() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}
