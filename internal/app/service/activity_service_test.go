package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/clickwall/clickwall/internal/app/model"
)

type mockActivityRepository struct {
	listFn func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error)
}

func (m *mockActivityRepository) ListSince(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, cutoff)
	}
	return nil, nil
}

func clickAt(userID string, at time.Time) model.ClickEvent {
	return model.ClickEvent{ID: at.Format(time.RFC3339Nano) + userID, UserID: userID, OccurredAt: at}
}

func TestActivityService_BuildSeries_Buckets(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []model.ClickEvent{
		clickAt("user-a", day.Add(5*time.Second)),
		clickAt("user-a", day.Add(45*time.Second)),
		clickAt("user-b", day.Add(90*time.Second)),
		clickAt("user-a", day.Add(130*time.Second)),
	}
	repo := &mockActivityRepository{
		listFn: func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
			return events, nil
		},
	}

	svc := NewActivityService(repo)
	series, err := svc.BuildSeries(context.Background(), 4, "user-a", time.UTC)
	if err != nil {
		t.Fatalf("BuildSeries error: %v", err)
	}

	wantBuckets := []string{"2025-03-10 09:00", "2025-03-10 09:01", "2025-03-10 09:02"}
	if !reflect.DeepEqual(series.Buckets, wantBuckets) {
		t.Fatalf("buckets mismatch: got %v, want %v", series.Buckets, wantBuckets)
	}
	if !reflect.DeepEqual(series.Total, []int64{2, 1, 1}) {
		t.Fatalf("total mismatch: got %v", series.Total)
	}
	if !reflect.DeepEqual(series.Mine, []int64{2, 0, 1}) {
		t.Fatalf("mine mismatch: got %v", series.Mine)
	}
}

func TestActivityService_BuildSeries_Anonymous(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &mockActivityRepository{
		listFn: func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
			return []model.ClickEvent{clickAt("user-a", day)}, nil
		},
	}

	svc := NewActivityService(repo)
	series, err := svc.BuildSeries(context.Background(), 4, "", time.UTC)
	if err != nil {
		t.Fatalf("BuildSeries error: %v", err)
	}
	if series.Mine != nil {
		t.Fatalf("expected no personal series for anonymous viewer, got %v", series.Mine)
	}
	if !reflect.DeepEqual(series.Total, []int64{1}) {
		t.Fatalf("total mismatch: got %v", series.Total)
	}
}

func TestActivityService_BuildSeries_Empty(t *testing.T) {
	repo := &mockActivityRepository{
		listFn: func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
			return nil, nil
		},
	}

	svc := NewActivityService(repo)
	series, err := svc.BuildSeries(context.Background(), 4, "user-a", time.UTC)
	if err != nil {
		t.Fatalf("BuildSeries error: %v", err)
	}
	if len(series.Buckets) != 0 || len(series.Total) != 0 {
		t.Fatalf("expected empty series, got %+v", series)
	}
}

func TestActivityService_BuildSeries_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	repo := &mockActivityRepository{
		listFn: func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
			return []model.ClickEvent{clickAt("user-a", at)}, nil
		},
	}

	svc := NewActivityService(repo)
	series, err := svc.BuildSeries(context.Background(), 4, "", loc)
	if err != nil {
		t.Fatalf("BuildSeries error: %v", err)
	}
	if len(series.Buckets) != 1 || series.Buckets[0] != "2025-03-11 01:30" {
		t.Fatalf("expected bucket in request timezone, got %v", series.Buckets)
	}
}

func TestActivityService_BuildSeries_CutoffUsesClampedWindow(t *testing.T) {
	var gotCutoff time.Time
	repo := &mockActivityRepository{
		listFn: func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
			gotCutoff = cutoff
			return nil, nil
		},
	}

	svc := NewActivityService(repo)
	before := time.Now()
	if _, err := svc.BuildSeries(context.Background(), 30, "", time.UTC); err != nil {
		t.Fatalf("BuildSeries error: %v", err)
	}

	want := before.Add(-time.Duration(DefaultWindowHours) * time.Hour)
	if gotCutoff.Before(want.Add(-time.Minute)) || gotCutoff.After(want.Add(time.Minute)) {
		t.Fatalf("out-of-range hours should fall back to the default window, cutoff %v", gotCutoff)
	}
}

func TestActivityService_BuildSeries_RepositoryError(t *testing.T) {
	repoErr := errors.New("connection reset")
	repo := &mockActivityRepository{
		listFn: func(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
			return nil, repoErr
		},
	}

	svc := NewActivityService(repo)
	if _, err := svc.BuildSeries(context.Background(), 4, "", time.UTC); !errors.Is(err, repoErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestClampWindowHours(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{1, DefaultWindowHours},
		{2, 2},
		{4, 4},
		{24, 24},
		{25, DefaultWindowHours},
		{0, DefaultWindowHours},
		{-3, DefaultWindowHours},
	}
	for _, c := range cases {
		if got := ClampWindowHours(c.in); got != c.want {
			t.Fatalf("ClampWindowHours(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
