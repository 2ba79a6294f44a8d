package models

import (
	"time"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Address        string    `json:"address" gorm:"uniqueIndex;not null"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null;size:20"`
	HashedUsername string    `json:"-" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
