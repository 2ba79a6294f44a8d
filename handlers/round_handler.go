package handlers

import (
	"log"
	"net/http"
	"time"

	"colorrush/services"

	"github.com/gin-gonic/gin"
)

type RoundHandler struct {
	gate    *services.GateService
	entries *services.EntryService
	hub     *services.Hub
}

func NewRoundHandler(gate *services.GateService, entries *services.EntryService, hub *services.Hub) *RoundHandler {
	return &RoundHandler{
		gate:    gate,
		entries: entries,
		hub:     hub,
	}
}

type JoinRoundRequest struct {
	Address string `json:"address" binding:"required"`
	TxHash  string `json:"txHash" binding:"required"`
}

// GetCurrentRound returns the active round, creating one when the
// previous window has expired.
func (h *RoundHandler) GetCurrentRound(c *gin.Context) {
	round, err := h.gate.CurrentRound(c.Request.Context())
	if err != nil {
		log.Printf("Get current round error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get current round"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roundId":   round.RoundID,
		"startTime": round.StartTime.Format(time.RFC3339),
		"endTime":   round.EndTime.Format(time.RFC3339),
		"pool":      round.Pool,
		"entryFee":  round.EntryFee,
		"timeLeft":  round.TimeLeft(time.Now()),
	})
}

// GetJoinStatus reports whether a wallet has bought into a round.
// Malformed queries answer hasJoined=false rather than an error so the
// UI can poll it blindly.
func (h *RoundHandler) GetJoinStatus(c *gin.Context) {
	address := c.Query("check")
	roundID := c.Query("roundId")

	if address == "" || roundID == "" {
		c.JSON(http.StatusOK, gin.H{"hasJoined": false})
		return
	}

	joined, err := h.entries.HasJoined(roundID, address)
	if err != nil {
		log.Printf("Check join status error: %v", err)
		c.JSON(http.StatusOK, gin.H{"hasJoined": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hasJoined": joined})
}

// JoinRound records a paid entry into the current round. The entry fee
// transfer has already been confirmed by the wallet client; txHash is
// stored untouched.
func (h *RoundHandler) JoinRound(c *gin.Context) {
	var req JoinRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gate.Join(c.Request.Context(), req.Address, req.TxHash)
	if err != nil {
		respondServiceError(c, err, "Failed to join round")
		return
	}

	if result.AlreadyJoined {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Already joined this round",
			"roundId": result.RoundID,
		})
		return
	}

	if h.hub != nil {
		if round, roundErr := h.gate.CurrentRound(c.Request.Context()); roundErr == nil {
			h.hub.BroadcastPoolUpdate(round, result.Pool)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"roundId": result.RoundID,
		"pool":    result.Pool,
	})
}
