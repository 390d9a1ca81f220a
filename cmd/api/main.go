package main

import (
	"log"

	"catsync/internal/api"
	"catsync/internal/config"
	"catsync/internal/database"
	"catsync/internal/events"
	"catsync/internal/logger"
	"catsync/internal/services/rivile"
	"catsync/internal/services/shopify"
	"catsync/internal/store"
	"catsync/internal/sync"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	st := store.New(db.DB)

	// Initialize clients and the sync engine
	source := rivile.NewClient(cfg, logger)
	target := shopify.NewClient(cfg.ShopifyShopURL, cfg.ShopifyAccessToken, st, logger)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SyncEventsTopic, logger)
	}

	orchestrator := sync.NewOrchestrator(source, target, st, publisher, logger, cfg.StaleWindow)

	// Initialize API server
	server := api.New(cfg, logger, db, orchestrator)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
