package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facility-logbook-backend/config"
	"facility-logbook-backend/internal/advisor"
	"facility-logbook-backend/internal/api"
	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/db"
	"facility-logbook-backend/internal/store"
	"facility-logbook-backend/internal/syncer"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "logbook-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// The bridge client talks to the spreadsheet macro endpoint. With no URL
	// configured it stays constructed but every call reports ErrNoURL, which
	// downstream consumers treat as "offline mode".
	sheet := bridge.New(&cfg.Bridge)

	// The advisor key can arrive later through a config sync, so it is read
	// from settings on every call rather than captured at startup.
	adv := advisor.New(cfg.Advisor, func(ctx context.Context) string {
		key, err := appStore.Setting(ctx, syncer.AdvisorKeySetting)
		if err != nil {
			return ""
		}
		return key
	})

	// Initialize and run the sync orchestrator in the background
	orch := syncer.New(cfg, appStore, sheet)
	go orch.Run(ctx)

	// Initialize router
	router := api.NewRouter(cfg, appStore, sheet, orch, adv)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
