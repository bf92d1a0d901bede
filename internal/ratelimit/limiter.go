// Package ratelimit provides per-key token buckets, keyed by credential
// fingerprint so accounting groups by credential without retaining it.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   time.Duration
	burst   int
	now     func() time.Time
}

// New creates a Limiter allowing one request per `every` with the given
// burst, per key.
func New(every time.Duration, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		every:   every,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether the key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = l.now()
	l.mu.Unlock()

	return b.lim.Allow()
}

// PruneIdle drops buckets not seen within maxIdle and returns how many
// were removed. Callers run this periodically to bound memory.
func (l *Limiter) PruneIdle(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	removed := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}
