package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepEvery is how many calls pass between idle-entry sweeps.
const sweepEvery = 256

// KeyLimiter keeps one token bucket per key and drops buckets that have been
// idle longer than the TTL. A nil *KeyLimiter allows everything.
type KeyLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*bucket
	calls uint64
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// PerWindow builds a limiter allowing requests per window for each key, with
// the full allowance available as a burst. It returns nil when either value
// is not positive.
func PerWindow(requests int, window time.Duration) *KeyLimiter {
	if requests <= 0 || window <= 0 {
		return nil
	}
	return New(rate.Every(window/time.Duration(requests)), requests, window)
}

// New returns a limiter with the given refill rate and burst. idleTTL
// defaults to ten minutes.
func New(limit rate.Limit, burst int, idleTTL time.Duration) *KeyLimiter {
	if limit <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyLimiter{
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*bucket),
	}
}

// Allow reports whether key may consume one token at now. Empty keys are
// never limited.
func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byKey[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = b
	}
	b.lastSeen = now
	allowed := b.lim.AllowN(now, 1)

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}
	return allowed
}

// Len reports how many keys are tracked.
func (l *KeyLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

func (l *KeyLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	for k, b := range l.byKey {
		if b.lastSeen.Before(cutoff) {
			delete(l.byKey, k)
		}
	}
}
