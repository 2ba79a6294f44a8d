package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"colorrush/handlers"
	"colorrush/models"
	"colorrush/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWallet = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:colorrush_routes_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Round{}, &models.Entry{}, &models.Score{}))

	authService := services.NewAuthService(db, "test-secret")
	roundService := services.NewRoundService(db, nil, 0.5, 12*time.Hour)
	entryService := services.NewEntryService(db)
	scoreService := services.NewScoreService(db, entryService)
	leaderboardService := services.NewLeaderboardService(db)
	gateService := services.NewGateService(roundService, entryService, scoreService)

	hub := services.NewHub()
	go hub.Run()

	router := gin.New()
	SetupRoutes(router,
		handlers.NewAuthHandler(authService),
		handlers.NewRoundHandler(gateService, entryService, hub),
		handlers.NewScoreHandler(gateService, scoreService, leaderboardService, hub),
		hub,
		"test-secret",
	)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
	}
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoundFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	// Current round is created lazily on first fetch.
	var round struct {
		RoundID  string  `json:"roundId"`
		Pool     float64 `json:"pool"`
		EntryFee float64 `json:"entryFee"`
		TimeLeft int64   `json:"timeLeft"`
	}
	w := doJSON(t, router, http.MethodGet, "/api/round/current", "", &round)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, round.RoundID)
	assert.Equal(t, 0.5, round.EntryFee)
	assert.Equal(t, 0.0, round.Pool)
	assert.Greater(t, round.TimeLeft, int64(0))

	// Not joined yet.
	var joinStatus struct {
		HasJoined bool `json:"hasJoined"`
	}
	doJSON(t, router, http.MethodGet, "/api/round/join?check="+testWallet+"&roundId="+round.RoundID, "", &joinStatus)
	assert.False(t, joinStatus.HasJoined)

	// Join with a confirmed fee transfer reference.
	var joined struct {
		Success bool    `json:"success"`
		RoundID string  `json:"roundId"`
		Pool    float64 `json:"pool"`
	}
	w = doJSON(t, router, http.MethodPost, "/api/round/join",
		fmt.Sprintf(`{"address":%q,"txHash":"0xfeed"}`, testWallet), &joined)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, joined.Success)
	assert.Equal(t, 0.5, joined.Pool)

	doJSON(t, router, http.MethodGet, "/api/round/join?check="+testWallet+"&roundId="+round.RoundID, "", &joinStatus)
	assert.True(t, joinStatus.HasJoined)

	// Submit the one allowed score.
	var submitted struct {
		Success bool `json:"success"`
		Score   int  `json:"score"`
	}
	w = doJSON(t, router, http.MethodPost, "/api/submit-score",
		fmt.Sprintf(`{"roundId":%q,"address":%q,"score":22}`, round.RoundID, testWallet), &submitted)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 22, submitted.Score)

	// Second submission is rejected and reports the stored score.
	var rejection struct {
		Error     string `json:"error"`
		Score     int    `json:"score"`
		HasPlayed bool   `json:"hasPlayed"`
	}
	w = doJSON(t, router, http.MethodPost, "/api/submit-score",
		fmt.Sprintf(`{"roundId":%q,"address":%q,"score":5}`, round.RoundID, testWallet), &rejection)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 22, rejection.Score)
	assert.True(t, rejection.HasPlayed)

	// Leaderboard shows the first score.
	var board []services.LeaderboardEntry
	w = doJSON(t, router, http.MethodGet, "/api/leaderboard", "", &board)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, board, 1)
	assert.Equal(t, testWallet, board[0].Address)
	assert.Equal(t, 22, board[0].Score)
	assert.Equal(t, 1, board[0].Rank)

	// Wallet state machine view.
	var state struct {
		State string `json:"state"`
		Score int    `json:"score"`
	}
	doJSON(t, router, http.MethodGet, "/api/round/state?address="+testWallet+"&roundId="+round.RoundID, "", &state)
	assert.Equal(t, "played", state.State)
	assert.Equal(t, 22, state.Score)

	// Demo reset frees the slot.
	var reset struct {
		Success bool `json:"success"`
		CanPlay bool `json:"canPlay"`
	}
	w = doJSON(t, router, http.MethodGet, "/api/reset-play?address="+testWallet, "", &reset)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reset.Success)
	assert.True(t, reset.CanPlay)

	var status struct {
		HasPlayed bool `json:"hasPlayed"`
		CanPlay   bool `json:"canPlay"`
	}
	doJSON(t, router, http.MethodGet, "/api/round/play-count?address="+testWallet+"&roundId="+round.RoundID, "", &status)
	assert.False(t, status.HasPlayed)
	assert.True(t, status.CanPlay)
}

func TestSubmitScoreWithoutJoining(t *testing.T) {
	router := newTestRouter(t)

	var round struct {
		RoundID string `json:"roundId"`
	}
	doJSON(t, router, http.MethodGet, "/api/round/current", "", &round)

	var resp struct {
		Error string `json:"error"`
	}
	w := doJSON(t, router, http.MethodPost, "/api/submit-score",
		fmt.Sprintf(`{"roundId":%q,"address":%q,"score":10}`, round.RoundID, testWallet), &resp)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must join round first", resp.Error)
}

func TestSubmitScoreValidation(t *testing.T) {
	router := newTestRouter(t)

	// Missing score field fails binding before any store access.
	w := doJSON(t, router, http.MethodPost, "/api/submit-score",
		fmt.Sprintf(`{"roundId":"round-1000","address":%q}`, testWallet), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Negative score rejected.
	var resp struct {
		Error string `json:"error"`
	}
	w = doJSON(t, router, http.MethodPost, "/api/submit-score",
		fmt.Sprintf(`{"roundId":"round-1000","address":%q,"score":-3}`, testWallet), &resp)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed address rejected.
	w = doJSON(t, router, http.MethodPost, "/api/submit-score",
		`{"roundId":"round-1000","address":"nope","score":3}`, &resp)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	var registered struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	w := doJSON(t, router, http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"address":%q,"username":"speedy"}`, testWallet), &registered)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, registered.Token)

	// Profile requires the issued token.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var profile models.User
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &profile))
	assert.Equal(t, "speedy", profile.Username)
	assert.Equal(t, testWallet, profile.Address)
}
