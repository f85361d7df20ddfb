package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clickwall/clickwall/internal/app/repository"
	"github.com/clickwall/clickwall/internal/metrics"
)

const (
	// MinWindowHours and MaxWindowHours bound the dashboard window.
	MinWindowHours = 2
	MaxWindowHours = 24

	// DefaultWindowHours is used when the requested window is out of range.
	DefaultWindowHours = 4

	// bucketLayout is fixed width, so lexicographic order of bucket keys is
	// also chronological order.
	bucketLayout = "2006-01-02 15:04"
)

// Series is a minute-bucketed view of click activity over a trailing window.
// Total and Mine are aligned with Buckets, zero-filled for minutes where one
// side has no events. Mine is nil when there is no authenticated viewer.
type Series struct {
	Buckets []string `json:"buckets"`
	Total   []int64  `json:"total"`
	Mine    []int64  `json:"mine,omitempty"`
}

// ActivityService rebuilds the dashboard series from the click log. Each call
// is a pure one-shot read; concurrent viewers share no mutable state.
type ActivityService interface {
	BuildSeries(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*Series, error)
}

type activityService struct {
	events repository.ActivityRepository
}

// NewActivityService returns an ActivityService reading from the given log.
func NewActivityService(events repository.ActivityRepository) ActivityService {
	return &activityService{events: events}
}

// ClampWindowHours applies the inclusive [2,24] bound, falling back to the
// default for anything outside it.
func ClampWindowHours(hours int) int {
	if hours < MinWindowHours || hours > MaxWindowHours {
		return DefaultWindowHours
	}
	return hours
}

func (s *activityService) BuildSeries(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*Series, error) {
	start := time.Now()
	hours = ClampWindowHours(hours)
	if loc == nil {
		loc = time.UTC
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	events, err := s.events.ListSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list click events: %w", err)
	}

	total := make(map[string]int64)
	mine := make(map[string]int64)
	for _, ev := range events {
		key := ev.OccurredAt.In(loc).Format(bucketLayout)
		total[key]++
		if currentUserID != "" && ev.UserID == currentUserID {
			mine[key]++
		}
	}

	// Every event counted into mine is also counted into total, so the keys
	// of total already cover the union of both mappings.
	keys := make([]string, 0, len(total))
	for key := range total {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := &Series{
		Buckets: keys,
		Total:   make([]int64, len(keys)),
	}
	if currentUserID != "" {
		series.Mine = make([]int64, len(keys))
	}
	for i, key := range keys {
		series.Total[i] = total[key]
		if series.Mine != nil {
			series.Mine[i] = mine[key]
		}
	}

	metrics.ActivityBuildSeconds.Observe(time.Since(start).Seconds())
	return series, nil
}
