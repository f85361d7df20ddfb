package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clickwall/clickwall/internal/app/service"
	"github.com/gofiber/fiber/v2"
)

type mockActivityService struct {
	buildFn func(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error)
}

func (m *mockActivityService) BuildSeries(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error) {
	if m.buildFn != nil {
		return m.buildFn(ctx, hours, currentUserID, loc)
	}
	return &service.Series{}, nil
}

func activityTestApp(svc *mockActivityService, auth fiber.Handler) *fiber.App {
	app := fiber.New()
	NewActivityHandler(ActivityDeps{Activity: svc}).Register(app, auth)
	return app
}

func TestActivityHandler_Series(t *testing.T) {
	svc := &mockActivityService{
		buildFn: func(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error) {
			if hours != 8 {
				t.Fatalf("expected hours 8, got %d", hours)
			}
			if currentUserID != "user-a" {
				t.Fatalf("expected user-a, got %q", currentUserID)
			}
			return &service.Series{
				Buckets: []string{"2025-03-10 09:00"},
				Total:   []int64{2},
				Mine:    []int64{1},
			}, nil
		},
	}
	app := activityTestApp(svc, authAs("user-a"))

	req := httptest.NewRequest("GET", "/api/activity?hours=8", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var series service.Series
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(series.Buckets) != 1 || series.Total[0] != 2 || series.Mine[0] != 1 {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestActivityHandler_Series_DefaultHours(t *testing.T) {
	var gotHours int
	svc := &mockActivityService{
		buildFn: func(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error) {
			gotHours = hours
			return &service.Series{}, nil
		},
	}
	app := activityTestApp(svc, authAs(""))

	req := httptest.NewRequest("GET", "/api/activity", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if gotHours != service.DefaultWindowHours {
		t.Fatalf("expected default hours %d, got %d", service.DefaultWindowHours, gotHours)
	}
}

func TestActivityHandler_Series_BadHoursIgnored(t *testing.T) {
	var gotHours int
	svc := &mockActivityService{
		buildFn: func(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error) {
			gotHours = hours
			return &service.Series{}, nil
		},
	}
	app := activityTestApp(svc, authAs(""))

	req := httptest.NewRequest("GET", "/api/activity?hours=abc", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if gotHours != service.DefaultWindowHours {
		t.Fatalf("unparseable hours should fall back to default, got %d", gotHours)
	}
}

func TestActivityHandler_Series_Timezone(t *testing.T) {
	var gotLoc *time.Location
	svc := &mockActivityService{
		buildFn: func(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error) {
			gotLoc = loc
			return &service.Series{}, nil
		},
	}
	app := activityTestApp(svc, authAs(""))

	req := httptest.NewRequest("GET", "/api/activity?tz=Europe%2FBerlin", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if gotLoc == nil || gotLoc.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %v", gotLoc)
	}

	req = httptest.NewRequest("GET", "/api/activity?tz=Not%2FAZone", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if gotLoc != time.UTC {
		t.Fatalf("unknown zones should fall back to UTC, got %v", gotLoc)
	}
}

func TestActivityHandler_Series_ServiceError(t *testing.T) {
	svc := &mockActivityService{
		buildFn: func(ctx context.Context, hours int, currentUserID string, loc *time.Location) (*service.Series, error) {
			return nil, errors.New("query timeout")
		},
	}
	app := activityTestApp(svc, authAs(""))

	req := httptest.NewRequest("GET", "/api/activity", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}
