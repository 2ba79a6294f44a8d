package main

import (
	"log"

	"colorrush/config"
	"colorrush/handlers"
	"colorrush/middleware"
	"colorrush/models"
	"colorrush/routes"
	"colorrush/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Round{},
		&models.Entry{},
		&models.Score{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	roundService := services.NewRoundService(db, redisClient, cfg.EntryFee, cfg.RoundDuration)
	entryService := services.NewEntryService(db)
	scoreService := services.NewScoreService(db, entryService)
	leaderboardService := services.NewLeaderboardService(db)
	gateService := services.NewGateService(roundService, entryService, scoreService)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	roundHandler := handlers.NewRoundHandler(gateService, entryService, hub)
	scoreHandler := handlers.NewScoreHandler(gateService, scoreService, leaderboardService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, roundHandler, scoreHandler, hub, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s (treasury %s, entry fee %.2f)", cfg.Port, cfg.TreasuryAddress, cfg.EntryFee)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
