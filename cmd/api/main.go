package main

import (
	stdlog "log"
	"os"
	"runtime"
	"time"

	"github.com/civicfix/civicfix-api/internal/cache"
	"github.com/civicfix/civicfix-api/internal/client"
	"github.com/civicfix/civicfix-api/internal/config"
	"github.com/civicfix/civicfix-api/internal/database"
	"github.com/civicfix/civicfix-api/internal/handler"
	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/middleware"
	"github.com/civicfix/civicfix-api/internal/migration"
	"github.com/civicfix/civicfix-api/internal/repository"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	logger.InitAudit()
	metrics.Init()

	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Msg("CivicFix API starting")

	db, err := database.Connect(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if err := migration.NewMigrator(db).Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Estimation pipeline
	rateClient := client.NewExchangeRateClient(cfg.CurrencyAPIKey)
	estimator := service.NewEstimateService(rateClient)

	// WebSocket event feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	reportRepo := repository.NewReportRepository(db)
	bidRepo := repository.NewBidRepository(db)
	tenderRepo := repository.NewTenderRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	// Domain services
	listCache := cache.NewCache(30 * time.Second)
	defer listCache.Stop()

	reportService := service.NewReportService(reportRepo, tenderRepo, estimator, listCache, wsHub)
	bidService := service.NewBidService(bidRepo, reportRepo, wsHub)
	tenderService := service.NewTenderService(tenderRepo, reportRepo)
	ratingService := service.NewRatingService(ratingRepo, reportRepo)
	exportService := service.NewExportService(reportRepo)

	uploadService, err := service.NewUploadService(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload directory")
	}

	// Handlers
	analyzeHandler := handler.NewAnalyzeHandler(estimator)
	reportHandler := handler.NewReportHandler(reportService, uploadService, exportService)
	bidHandler := handler.NewBidHandler(bidService)
	tenderHandler := handler.NewTenderHandler(tenderService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	healthHandler := handler.NewHealthHandler(db, wsHub, listCache, Version)

	sessionAuth := middleware.NewSessionAuth(middleware.SessionAuthConfig{
		Users: sessionUsers(cfg),
	})

	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gin.Recovery())

	// Health and metrics (public)
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)
	r.GET("/health/metrics", healthHandler.Metrics)

	r.GET("/debug/memory", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(200, gin.H{
			"alloc_mb":      m.Alloc / 1024 / 1024,
			"sys_mb":        m.Sys / 1024 / 1024,
			"heap_alloc_mb": m.HeapAlloc / 1024 / 1024,
			"goroutines":    runtime.NumGoroutine(),
			"gc_runs":       m.NumGC,
		})
	})

	// Live event feed and uploaded photos (public)
	r.GET("/ws", wsHub.ServeWS)
	r.Static("/uploads", uploadService.Dir())

	// Citizen-facing API (public)
	api := r.Group("/api")
	{
		api.POST("/analyze-damage", analyzeHandler.Analyze)

		api.POST("/reports", reportHandler.Create)
		api.GET("/reports", reportHandler.List)
		api.GET("/reports/:id", reportHandler.Get)
		api.GET("/reports/:id/history", reportHandler.History)
		api.GET("/reports/:id/ratings", ratingHandler.ListByReport)

		api.GET("/tenders", tenderHandler.List)

		api.POST("/bids", bidHandler.Create)
		api.GET("/bids", bidHandler.List)
		api.GET("/bids/:id/progress", bidHandler.GetProgress)
		api.PATCH("/bids/:id/progress", bidHandler.UpdateProgress)

		api.POST("/ratings", ratingHandler.Create)
		api.GET("/contractors/:contractor/ratings", ratingHandler.ContractorSummary)
	}

	// Official session endpoints
	r.POST("/api/login", sessionAuth.Login)
	r.POST("/api/logout", sessionAuth.Logout)

	// Official surface: session-protected management endpoints
	official := r.Group("/api/official")
	official.Use(sessionAuth.RequireSession())
	{
		official.PUT("/reports/:id", reportHandler.Update)
		official.POST("/tenders", tenderHandler.Create)
		official.GET("/reports/export", reportHandler.Export)
	}

	// Machine-to-machine surface guarded by the static API token
	integration := r.Group("/api/v1")
	integration.Use(middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI: cfg.TokenAPI,
	}))
	{
		integration.PUT("/reports/:id", reportHandler.Update)
		integration.GET("/reports/export", reportHandler.Export)
	}

	log.Info().Str("port", cfg.Port).Msg("Server starting")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
		os.Exit(1)
	}
}

// sessionUsers builds the official login table from the environment
func sessionUsers(cfg *config.Config) map[string]string {
	users := make(map[string]string)
	if cfg.AdminUser != "" && cfg.AdminPasswordHash != "" {
		users[cfg.AdminUser] = cfg.AdminPasswordHash
	}
	return users
}
