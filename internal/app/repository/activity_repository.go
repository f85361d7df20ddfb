package repository

import (
	"context"
	"time"

	"github.com/clickwall/clickwall/internal/app/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository reads the raw click log for dashboard aggregation. The
// fetch is a bounded one-shot range scan; ordering is left to the caller.
type ActivityRepository interface {
	ListSince(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a pgx-backed ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) ListSince(ctx context.Context, cutoff time.Time) ([]model.ClickEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, occurred_at FROM click_events WHERE occurred_at >= $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ClickEvent
	for rows.Next() {
		var ev model.ClickEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
