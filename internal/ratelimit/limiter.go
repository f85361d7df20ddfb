package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultLimit is the ceiling enforced per client key within one window.
	DefaultLimit = 150

	// DefaultWindow is the fixed window duration.
	DefaultWindow = time.Minute

	// AdvisoryLimit is the figure quoted in user-facing rejection messages.
	// It is materially lower than the enforced ceiling; the discrepancy is
	// deliberate and tracked as an open product question.
	AdvisoryLimit = 15
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request from a given client key is admitted.
// Implementations must be safe for concurrent use; admission never exceeds
// Limit within a single window for a given key.
type Limiter interface {
	Check(ctx context.Context, key string) (Decision, error)
	Limit() int
	Window() time.Duration
}
