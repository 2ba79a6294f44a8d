package routes

import (
	"log"
	"net/http"

	"colorrush/handlers"
	"colorrush/middleware"
	"colorrush/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	roundHandler *handlers.RoundHandler,
	scoreHandler *handlers.ScoreHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/connect", authHandler.Connect)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
		}

		// Round routes
		round := api.Group("/round")
		{
			round.GET("/current", roundHandler.GetCurrentRound)
			round.GET("/join", roundHandler.GetJoinStatus)
			round.POST("/join", roundHandler.JoinRound)
			round.GET("/play-count", scoreHandler.GetPlayStatus)
			round.GET("/state", scoreHandler.GetWalletState)
		}

		api.POST("/submit-score", scoreHandler.SubmitScore)
		api.GET("/leaderboard", scoreHandler.GetLeaderboard)
		api.GET("/reset-play", scoreHandler.ResetPlay)
	}

	// WebSocket endpoint for live pool and leaderboard updates
	router.GET("/ws/leaderboard", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		hub.RegisterClient(conn)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
