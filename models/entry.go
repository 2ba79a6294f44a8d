package models

import (
	"time"
)

// Entry records one paid join of a wallet into a round. The composite
// unique index is what makes the join idempotent under concurrent
// requests: a second insert for the same (round, wallet) is rejected by
// the store, not just by the application check.
type Entry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoundID   string    `json:"round_id" gorm:"not null;uniqueIndex:idx_entries_round_address"`
	Address   string    `json:"address" gorm:"not null;uniqueIndex:idx_entries_round_address"`
	TxHash    string    `json:"tx_hash" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
