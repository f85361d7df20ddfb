package model

import "time"

// ClickEvent is one append-only entry in the click log. Events are never
// mutated or deleted; the user and global counters are derivable from them.
type ClickEvent struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"size:64;index;not null"`
	OccurredAt time.Time `json:"occurred_at" gorm:"index;not null"`
}

// NATS subjects carrying counter snapshots after each committed click.
const (
	SubjectGlobalCounter     = "counters.global"
	SubjectUserCounterPrefix = "counters.user."
)

// UserCounterSubject returns the per-user snapshot subject.
func UserCounterSubject(userID string) string {
	return SubjectUserCounterPrefix + userID
}
