package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"colorrush/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory sqlite database with the full schema
// migrated. Shared cache keeps gorm's pooled connections on the same
// database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:colorrush_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Round{}, &models.Entry{}, &models.Score{})
	require.NoError(t, err)

	return db
}

type testEnv struct {
	db          *gorm.DB
	rounds      *RoundService
	entries     *EntryService
	scores      *ScoreService
	leaderboard *LeaderboardService
	gate        *GateService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	rounds := NewRoundService(db, nil, 0.5, 12*time.Hour)
	entries := NewEntryService(db)
	scores := NewScoreService(db, entries)

	return &testEnv{
		db:          db,
		rounds:      rounds,
		entries:     entries,
		scores:      scores,
		leaderboard: NewLeaderboardService(db),
		gate:        NewGateService(rounds, entries, scores),
	}
}

func seedRound(t *testing.T, db *gorm.DB, roundID string, fee float64) *models.Round {
	t.Helper()

	now := time.Now()
	round := models.Round{
		RoundID:   roundID,
		StartTime: now,
		EndTime:   now.Add(12 * time.Hour),
		Pool:      0,
		EntryFee:  fee,
	}
	require.NoError(t, db.Create(&round).Error)
	return &round
}
