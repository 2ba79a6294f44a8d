package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"colorrush/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// roundCreateLockKey serializes lazy round creation across instances.
// The TTL only has to outlive one find+insert round trip.
const roundCreateLockKey = "colorrush:round:create"

const roundCreateLockTTL = 5 * time.Second

// RoundService is the round directory: it resolves the single active
// round for the current wall-clock time, creating one lazily when none
// exists.
type RoundService struct {
	db            *gorm.DB
	redis         *redis.Client
	entryFee      float64
	roundDuration time.Duration
	now           func() time.Time
}

func NewRoundService(db *gorm.DB, redis *redis.Client, entryFee float64, roundDuration time.Duration) *RoundService {
	return &RoundService{
		db:            db,
		redis:         redis,
		entryFee:      entryFee,
		roundDuration: roundDuration,
		now:           time.Now,
	}
}

// GetCurrentRound returns the round whose window contains now. When no
// round is active a new one is created with start = now and
// end = now + roundDuration.
func (s *RoundService) GetCurrentRound(ctx context.Context) (*models.Round, error) {
	round, err := s.findActive(s.now())
	if err != nil {
		return nil, err
	}
	if round != nil {
		return round, nil
	}

	return s.createRound(ctx)
}

func (s *RoundService) findActive(now time.Time) (*models.Round, error) {
	var round models.Round
	err := s.db.Where("start_time <= ? AND end_time >= ?", now, now).First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("find active round", err)
	}

	// Stored records from older deployments may miss fee/pool defaults.
	if round.EntryFee == 0 {
		round.EntryFee = s.entryFee
	}

	return &round, nil
}

// createRound inserts a fresh round. Creation is serialized through a
// short-lived redis lock so concurrent requests hitting an empty window
// produce one round, not several with different ids. The unique index on
// round_id stops a double insert of the same id either way; without
// redis the cross-id race stays open and is logged.
func (s *RoundService) createRound(ctx context.Context) (*models.Round, error) {
	if s.acquireCreateLock(ctx) {
		defer s.releaseCreateLock(ctx)
	}

	// Someone may have created the round while we raced for the lock.
	round, err := s.findActive(s.now())
	if err != nil {
		return nil, err
	}
	if round != nil {
		return round, nil
	}

	start := s.now()
	created := models.Round{
		RoundID:   fmt.Sprintf("round-%d", start.UnixMilli()),
		StartTime: start,
		EndTime:   start.Add(s.roundDuration),
		Pool:      0,
		EntryFee:  s.entryFee,
	}

	if err := s.db.Create(&created).Error; err != nil {
		// Lost the insert race: another instance created a round for this
		// window between our lookup and the insert.
		if existing, findErr := s.findActive(s.now()); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, storeErr("create round", err)
	}

	log.Printf("Created round %s (%s - %s, fee %.2f)", created.RoundID,
		created.StartTime.Format(time.RFC3339), created.EndTime.Format(time.RFC3339), created.EntryFee)

	return &created, nil
}

func (s *RoundService) acquireCreateLock(ctx context.Context) bool {
	if s.redis == nil {
		log.Printf("Round creation without redis lock; concurrent callers may create duplicate rounds")
		return false
	}

	ok, err := s.redis.SetNX(ctx, roundCreateLockKey, "1", roundCreateLockTTL).Result()
	if err != nil {
		log.Printf("Round creation lock unavailable: %v", err)
		return false
	}
	if !ok {
		// Another instance holds the lock; give it a beat to finish, then
		// fall through and rely on the lookup-after-insert path.
		time.Sleep(100 * time.Millisecond)
	}
	return ok
}

func (s *RoundService) releaseCreateLock(ctx context.Context) {
	if err := s.redis.Del(ctx, roundCreateLockKey).Err(); err != nil {
		log.Printf("Failed to release round creation lock: %v", err)
	}
}
