package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catsync/internal/config"
	"catsync/internal/database"
	"catsync/internal/events"
	"catsync/internal/logger"
	"catsync/internal/services/rivile"
	"catsync/internal/services/shopify"
	"catsync/internal/store"
	"catsync/internal/sync"
)

// The worker is the external trigger for the engine's passes: it owns
// the cadences, the engine only exposes run-once entry points.
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

	source := rivile.NewClient(cfg, logger)
	target := shopify.NewClient(cfg.ShopifyShopURL, cfg.ShopifyAccessToken, st, logger)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SyncEventsTopic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	orchestrator := sync.NewOrchestrator(source, target, st, publisher, logger, cfg.StaleWindow)

	// Reference data first: variant creation needs a location and
	// publishing needs the publication ids.
	if err := orchestrator.RunRefDataOnce(); err != nil {
		logger.Error("Reference data fetch failed: %v", err)
	}

	runPass := func() {
		if _, err := orchestrator.RunFetchOnce(); err != nil {
			logger.Error("Fetch pass failed: %v", err)
		}
		if _, err := orchestrator.RunSyncOnce(); err != nil {
			logger.Error("Sync pass failed: %v", err)
		}
	}

	logger.Info("Worker started")
	runPass()

	fetchTicker := time.NewTicker(cfg.FetchInterval)
	refDataTicker := time.NewTicker(cfg.RefDataInterval)
	defer fetchTicker.Stop()
	defer refDataTicker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-fetchTicker.C:
			runPass()
		case <-refDataTicker.C:
			if err := orchestrator.RunRefDataOnce(); err != nil {
				logger.Error("Reference data fetch failed: %v", err)
			}
		case <-quit:
			logger.Info("Shutting down worker...")
			return
		}
	}
}
