package services

import (
	"errors"
	"log"
	"strings"

	"colorrush/models"

	"gorm.io/gorm"
)

// EntryService is the entry ledger: one paid join per (round, wallet).
type EntryService struct {
	db *gorm.DB
}

func NewEntryService(db *gorm.DB) *EntryService {
	return &EntryService{db: db}
}

type JoinResult struct {
	AlreadyJoined bool    `json:"already_joined"`
	RoundID       string  `json:"round_id"`
	Pool          float64 `json:"pool"`
}

// HasJoined reports whether the wallet holds an entry for the round.
func (s *EntryService) HasJoined(roundID, address string) (bool, error) {
	address = strings.ToLower(address)

	var entry models.Entry
	err := s.db.Where("round_id = ? AND address = ?", roundID, address).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeErr("find entry", err)
	}
	return true, nil
}

// Join records the wallet's paid entry into the round and adds the entry
// fee to the round's pool. Calling it again for the same pair is a no-op
// reported via AlreadyJoined. The fee payment itself happened on-chain
// before this call; txHash is stored as an opaque reference.
func (s *EntryService) Join(round *models.Round, address, txHash string) (*JoinResult, error) {
	address = strings.ToLower(address)

	joined, err := s.HasJoined(round.RoundID, address)
	if err != nil {
		return nil, err
	}
	if joined {
		return &JoinResult{AlreadyJoined: true, RoundID: round.RoundID, Pool: round.Pool}, nil
	}

	entry := models.Entry{
		RoundID: round.RoundID,
		Address: address,
		TxHash:  txHash,
	}

	if err := s.db.Create(&entry).Error; err != nil {
		// The unique index catches the concurrent double join; treat it
		// like the idempotent path rather than a failure.
		if again, checkErr := s.HasJoined(round.RoundID, address); checkErr == nil && again {
			return &JoinResult{AlreadyJoined: true, RoundID: round.RoundID, Pool: round.Pool}, nil
		}
		return nil, storeErr("create entry", err)
	}

	// Pool accounting is best-effort: the entry is the source of truth,
	// so an increment failure must not fail the join.
	pool := round.Pool + round.EntryFee
	err = s.db.Model(&models.Round{}).
		Where("round_id = ?", round.RoundID).
		UpdateColumn("pool", gorm.Expr("pool + ?", round.EntryFee)).Error
	if err != nil {
		log.Printf("Failed to increment pool for round %s: %v", round.RoundID, err)
		pool = round.Pool
	}

	return &JoinResult{AlreadyJoined: false, RoundID: round.RoundID, Pool: pool}, nil
}
