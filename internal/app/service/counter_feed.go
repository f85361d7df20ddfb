package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clickwall/clickwall/internal/app/model"
	"github.com/clickwall/clickwall/internal/app/repository"
	"github.com/clickwall/clickwall/internal/metrics"
	"go.uber.org/zap"
)

const subscriptionBuffer = 16

// TargetKind selects which counter a subscription observes.
type TargetKind string

const (
	TargetGlobal TargetKind = "global"
	TargetUser   TargetKind = "user"
)

// Target identifies a counter.
type Target struct {
	Kind   TargetKind `json:"kind"`
	UserID string     `json:"user_id,omitempty"`
}

// GlobalTarget identifies the global counter.
func GlobalTarget() Target { return Target{Kind: TargetGlobal} }

// UserTarget identifies one user's counter.
func UserTarget(userID string) Target { return Target{Kind: TargetUser, UserID: userID} }

func (t Target) subject() string {
	if t.Kind == TargetUser {
		return model.UserCounterSubject(t.UserID)
	}
	return model.SubjectGlobalCounter
}

// Snapshot is one observed counter value. Exists is false when the underlying
// record has not been created yet.
type Snapshot struct {
	Target Target    `json:"target"`
	Value  int64     `json:"value"`
	Exists bool      `json:"exists"`
	At     time.Time `json:"at"`
}

// CounterFeed lets consumers observe counter updates without polling. Every
// subscription receives an immediate snapshot of the current value, then one
// snapshot per change published on the bus.
type CounterFeed struct {
	bus      Bus
	counters repository.ClickRepository
	logger   *zap.Logger
}

// NewCounterFeed builds a feed over the given bus and counter store.
func NewCounterFeed(bus Bus, counters repository.ClickRepository, logger *zap.Logger) *CounterFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterFeed{bus: bus, counters: counters, logger: logger}
}

// Subscribe registers interest in target. Subscriptions are independent:
// cancelling one never affects another.
func (f *CounterFeed) Subscribe(ctx context.Context, target Target) (*Subscription, error) {
	if f.bus == nil {
		return nil, errors.New("counter feed bus is not configured")
	}

	sub := &Subscription{ch: make(chan Snapshot, subscriptionBuffer)}

	initial, err := f.currentSnapshot(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}
	sub.deliver(initial)

	busSub, err := f.bus.Subscribe(target.subject(), func(data []byte) {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			f.logger.Error("failed to decode counter snapshot", zap.Error(err))
			return
		}
		sub.deliver(snap)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", target.subject(), err)
	}
	sub.cancel = busSub

	metrics.FeedSubscriptions.Inc()
	return sub, nil
}

func (f *CounterFeed) currentSnapshot(ctx context.Context, target Target) (Snapshot, error) {
	now := time.Now().UTC()
	if target.Kind == TargetUser {
		value, exists, err := f.counters.GetUserCount(ctx, target.UserID)
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Target: target, Value: value, Exists: exists, At: now}, nil
	}

	value, exists, err := f.counters.GetGlobalTotal(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Target: target, Value: value, Exists: exists, At: now}, nil
}

// Subscription is a cancellable stream of counter snapshots.
type Subscription struct {
	ch     chan Snapshot
	cancel BusSubscription

	mu     sync.Mutex
	closed bool
}

// C returns the snapshot channel. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Unsubscribe tears the subscription down. It is idempotent; once it returns,
// no further snapshot reaches the channel.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.cancel != nil {
		_ = s.cancel.Unsubscribe()
	}

	s.mu.Lock()
	close(s.ch)
	s.mu.Unlock()

	metrics.FeedSubscriptions.Dec()
}

// deliver hands a snapshot to the consumer. Snapshots arriving after teardown
// or past a lagging consumer's buffer are dropped.
func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snap:
	default:
	}
}
