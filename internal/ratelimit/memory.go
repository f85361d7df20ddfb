package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a process-local fixed-window limiter. One clientWindow is
// kept per key; the table is guarded by a single mutex so concurrent checks
// for the same key serialize and can never admit past the ceiling. A janitor
// evicts windows idle beyond a grace multiple of the window so the table does
// not grow without bound under many distinct clients.
type MemoryLimiter struct {
	mu           sync.Mutex
	windows      map[string]*clientWindow
	limit        int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type clientWindow struct {
	count     int
	startedAt time.Time
}

// MemoryOption customizes a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithIdleTTL sets how long an untouched window survives before eviction.
func WithIdleTTL(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.idleTTL = d }
}

// WithCleanupEvery sets the janitor interval.
func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.cleanupEvery = d }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

// NewMemory builds a MemoryLimiter with the given ceiling and window.
func NewMemory(limit int, window time.Duration, opts ...MemoryOption) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &MemoryLimiter{
		windows:      make(map[string]*clientWindow),
		limit:        limit,
		window:       window,
		idleTTL:      3 * window,
		cleanupEvery: window,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLimiter) Limit() int            { return l.limit }
func (l *MemoryLimiter) Window() time.Duration { return l.window }

// Check admits or rejects one request for key. An empty key is a valid
// degenerate bucket; the gate itself never fails.
func (l *MemoryLimiter) Check(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		l.windows[key] = &clientWindow{count: 1, startedAt: now}
		return Decision{Allowed: true, Remaining: l.limit - 1}, nil
	}

	elapsed := now.Sub(w.startedAt)
	if elapsed > l.window {
		w.count = 1
		w.startedAt = now
		return Decision{Allowed: true, Remaining: l.limit - 1}, nil
	}

	if w.count < l.limit {
		w.count++
		return Decision{Allowed: true, Remaining: l.limit - w.count}, nil
	}

	return Decision{Allowed: false, Remaining: 0, RetryAfter: l.window - elapsed}, nil
}

// Cleanup drops windows whose start is older than the idle TTL.
func (l *MemoryLimiter) Cleanup() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if w.startedAt.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}

// StartJanitor runs periodic eviction until ctx is cancelled.
func (l *MemoryLimiter) StartJanitor(ctx context.Context) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
