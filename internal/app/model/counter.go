package model

// GlobalCounterID is the primary key of the single global counter row.
const GlobalCounterID = 1

// GlobalCounter is the singleton projection of the total number of click
// events across all users. Only the ledger transaction writes it.
type GlobalCounter struct {
	ID    int   `db:"id" gorm:"primaryKey"`
	Total int64 `db:"total" gorm:"not null;default:0"`
}
