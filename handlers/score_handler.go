package handlers

import (
	"errors"
	"log"
	"net/http"

	"colorrush/services"

	"github.com/gin-gonic/gin"
)

type ScoreHandler struct {
	gate        *services.GateService
	scores      *services.ScoreService
	leaderboard *services.LeaderboardService
	hub         *services.Hub
}

func NewScoreHandler(gate *services.GateService, scores *services.ScoreService, leaderboard *services.LeaderboardService, hub *services.Hub) *ScoreHandler {
	return &ScoreHandler{
		gate:        gate,
		scores:      scores,
		leaderboard: leaderboard,
		hub:         hub,
	}
}

type SubmitScoreRequest struct {
	RoundID string `json:"roundId" binding:"required"`
	Address string `json:"address" binding:"required"`
	Score   *int   `json:"score" binding:"required"`
}

// SubmitScore records the wallet's single play result for the round.
func (h *ScoreHandler) SubmitScore(c *gin.Context) {
	var req SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := h.gate.SubmitScore(req.RoundID, req.Address, *req.Score)
	if err != nil {
		var alreadyPlayed *services.AlreadyPlayedError
		if errors.As(err, &alreadyPlayed) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "You have already played this round. Wait for the next round to play again.",
				"score":     alreadyPlayed.Score,
				"hasPlayed": true,
			})
			return
		}
		respondServiceError(c, err, "Failed to submit score")
		return
	}

	h.broadcastLeaderboard(req.RoundID)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"score":        score,
		"hasPlayed":    true,
		"canPlayAgain": false,
	})
}

// GetPlayStatus reports whether a wallet has already used its one play
// for the round, and the score it locked in.
func (h *ScoreHandler) GetPlayStatus(c *gin.Context) {
	address := c.Query("address")
	roundID := c.Query("roundId")

	if address == "" || roundID == "" {
		c.JSON(http.StatusOK, gin.H{"hasPlayed": false, "score": 0, "canPlay": true, "playCount": 0})
		return
	}

	status, err := h.scores.HasPlayed(roundID, address)
	if err != nil {
		log.Printf("Play status error: %v", err)
		c.JSON(http.StatusOK, gin.H{"hasPlayed": false, "score": 0, "canPlay": true, "playCount": 0})
		return
	}

	playCount := 0
	if status.HasPlayed {
		playCount = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"hasPlayed": status.HasPlayed,
		"score":     status.Score,
		"canPlay":   status.CanPlay,
		"playCount": playCount,
	})
}

// GetLeaderboard returns the ranked top scores for the current round.
func (h *ScoreHandler) GetLeaderboard(c *gin.Context) {
	round, err := h.gate.CurrentRound(c.Request.Context())
	if err != nil {
		log.Printf("Leaderboard round lookup error: %v", err)
		c.JSON(http.StatusOK, []services.LeaderboardEntry{})
		return
	}

	entries, err := h.leaderboard.GetLeaderboard(round.RoundID)
	if err != nil {
		log.Printf("Leaderboard fetch error: %v", err)
		c.JSON(http.StatusOK, []services.LeaderboardEntry{})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetWalletState reports the join/play state machine position for a
// wallet in a round, for the UI to pick the right screen.
func (h *ScoreHandler) GetWalletState(c *gin.Context) {
	address := c.Query("address")
	roundID := c.Query("roundId")

	if address == "" || roundID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and roundId are required"})
		return
	}

	state, err := h.gate.State(roundID, address)
	if err != nil {
		respondServiceError(c, err, "Failed to resolve wallet state")
		return
	}

	c.JSON(http.StatusOK, state)
}

// ResetPlay deletes the wallet's score for the current round so it can
// play again. Demo escape hatch.
func (h *ScoreHandler) ResetPlay(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address is required"})
		return
	}

	deleted, roundID, err := h.gate.Reset(c.Request.Context(), address)
	if err != nil {
		respondServiceError(c, err, "Failed to reset play status")
		return
	}

	if !deleted {
		c.JSON(http.StatusOK, gin.H{
			"message": "No score found to delete. You can already play.",
			"canPlay": true,
		})
		return
	}

	h.broadcastLeaderboard(roundID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Play status reset! You can now play again.",
		"canPlay": true,
	})
}

func (h *ScoreHandler) broadcastLeaderboard(roundID string) {
	if h.hub == nil {
		return
	}
	entries, err := h.leaderboard.GetLeaderboard(roundID)
	if err != nil {
		log.Printf("Leaderboard broadcast skipped: %v", err)
		return
	}
	h.hub.BroadcastLeaderboard(roundID, entries)
}
