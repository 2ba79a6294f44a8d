package models

import (
	"time"
)

// Score is the single recorded result of one wallet's one play in one
// round. One row per (round, wallet) enforces one play per round; rows
// are write-once and only removed by the demo reset endpoint.
type Score struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoundID   string    `json:"round_id" gorm:"not null;uniqueIndex:idx_scores_round_address"`
	Address   string    `json:"address" gorm:"not null;uniqueIndex:idx_scores_round_address"`
	Score     int       `json:"score" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
