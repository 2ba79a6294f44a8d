package models

import (
	"time"
)

// Round is a 12-hour competition window. The pool only ever grows
// (entry fee increments); rounds are never mutated otherwise and never
// deleted.
type Round struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoundID   string    `json:"round_id" gorm:"uniqueIndex;not null"`
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null;index"`
	Pool      float64   `json:"pool" gorm:"not null;default:0"`
	EntryFee  float64   `json:"entry_fee" gorm:"not null;default:0.5"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the round window contains t.
func (r *Round) Active(t time.Time) bool {
	return !t.Before(r.StartTime) && !t.After(r.EndTime)
}

// TimeLeft returns whole seconds until the round ends, floored at 0.
func (r *Round) TimeLeft(t time.Time) int64 {
	left := r.EndTime.Sub(t)
	if left < 0 {
		return 0
	}
	return int64(left.Seconds())
}
