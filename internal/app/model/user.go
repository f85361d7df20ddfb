package model

import "time"

// User describes an account record stored in Postgres. ClickCount is a
// transactionally maintained projection of the user's entries in the click
// event log; it is created at zero with the account and only ever incremented
// through the ledger transaction.
type User struct {
	ID         string    `db:"id" gorm:"primaryKey;size:64"`
	Username   string    `db:"username" gorm:"size:64;not null"`
	Email      string    `db:"email" gorm:"size:255;uniqueIndex;not null"`
	ClickCount int64     `db:"click_count" gorm:"not null;default:0"`
	CreatedAt  time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `db:"updated_at" gorm:"autoUpdateTime"`
}
