package services

import (
	"errors"
	"log"
	"strings"

	"colorrush/models"

	"gorm.io/gorm"
)

// ScoreService is the score ledger: the single write-once result of one
// wallet's play in one round.
type ScoreService struct {
	db      *gorm.DB
	entries *EntryService
}

func NewScoreService(db *gorm.DB, entries *EntryService) *ScoreService {
	return &ScoreService{db: db, entries: entries}
}

type PlayStatus struct {
	HasPlayed bool `json:"has_played"`
	Score     int  `json:"score"`
	CanPlay   bool `json:"can_play"`
}

// HasPlayed returns the wallet's play status for the round, with the
// stored score when it exists.
func (s *ScoreService) HasPlayed(roundID, address string) (*PlayStatus, error) {
	address = strings.ToLower(address)

	var score models.Score
	err := s.db.Where("round_id = ? AND address = ?", roundID, address).First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PlayStatus{HasPlayed: false, Score: 0, CanPlay: true}, nil
		}
		return nil, storeErr("find score", err)
	}

	return &PlayStatus{HasPlayed: true, Score: score.Score, CanPlay: false}, nil
}

// Submit records the wallet's one score for the round. It fails with
// ErrNotJoined when no entry exists and with AlreadyPlayedError when a
// score is already on record; the stored score is never overwritten.
func (s *ScoreService) Submit(roundID, address string, value int) (int, error) {
	address = strings.ToLower(address)

	joined, err := s.entries.HasJoined(roundID, address)
	if err != nil {
		return 0, err
	}
	if !joined {
		return 0, ErrNotJoined
	}

	status, err := s.HasPlayed(roundID, address)
	if err != nil {
		return 0, err
	}
	if status.HasPlayed {
		return 0, &AlreadyPlayedError{Score: status.Score}
	}

	score := models.Score{
		RoundID: roundID,
		Address: address,
		Score:   value,
	}

	if err := s.db.Create(&score).Error; err != nil {
		// Two submissions raced past the check; the unique index let only
		// one row through. Report the winner's score.
		if again, checkErr := s.HasPlayed(roundID, address); checkErr == nil && again.HasPlayed {
			return 0, &AlreadyPlayedError{Score: again.Score}
		}
		return 0, storeErr("create score", err)
	}

	return score.Score, nil
}

// Reset deletes the wallet's score for the round so it can play again.
// Demo escape hatch only; it is the one path that removes a score row.
func (s *ScoreService) Reset(roundID, address string) (bool, error) {
	address = strings.ToLower(address)

	result := s.db.Where("round_id = ? AND address = ?", roundID, address).Delete(&models.Score{})
	if result.Error != nil {
		return false, storeErr("delete score", result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	log.Printf("Reset play status for %s in round %s", address, roundID)
	return true, nil
}
