package services

import (
	"colorrush/models"

	"gorm.io/gorm"
)

const leaderboardLimit = 100

// LeaderboardService projects the score ledger into a ranked view. Every
// call queries the store fresh; nothing is cached between calls.
type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

type LeaderboardEntry struct {
	Address string `json:"address"`
	Score   int    `json:"score"`
	Rank    int    `json:"rank"`
}

// GetLeaderboard returns the top scores for the round, highest first.
// Ties go to the earlier submission, and ranks are dense 1-based
// positions in that order.
func (s *LeaderboardService) GetLeaderboard(roundID string) ([]LeaderboardEntry, error) {
	var scores []models.Score
	err := s.db.Where("round_id = ?", roundID).
		Order("score DESC").
		Order("created_at ASC").
		Limit(leaderboardLimit).
		Find(&scores).Error
	if err != nil {
		return nil, storeErr("query leaderboard", err)
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, score := range scores {
		entries = append(entries, LeaderboardEntry{
			Address: score.Address,
			Score:   score.Score,
			Rank:    i + 1,
		})
	}

	return entries, nil
}
