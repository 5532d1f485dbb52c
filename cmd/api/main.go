// Command api is the NFL game-center data API server.
//
// Usage:
//
//	nfl-api
//	API_PORT=8080 DATABASE_URL=postgres://... nfl-api

// @title NFL Game Center Data API
// @version 1.0.0
// @description Serves NFL teams, rosters, games, schedules and team statistics ingested from ESPN, plus refresh endpoints that re-ingest a week or the season's team stats.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gamecenter/nfl-data/internal/api"
	"github.com/gamecenter/nfl-data/internal/cache"
	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/maintenance"
	"github.com/gamecenter/nfl-data/internal/metrics"
	"github.com/gamecenter/nfl-data/internal/provider/espn"
	"github.com/gamecenter/nfl-data/internal/seed"
	"github.com/gamecenter/nfl-data/internal/task"

	_ "github.com/gamecenter/nfl-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := docstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open document store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	m := metrics.NewService()

	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	source := espn.NewFromConfig(cfg, m, logger)
	loader := seed.NewLoader(store, source, logger,
		seed.WithMetrics(m),
		seed.WithStatsDelay(cfg.StatsRequestDelay))
	runner := task.NewRunner(logger, task.WithMetrics(m))

	// Maintenance tickers (generation prune, collection report)
	if cfg.MaintenanceEnabled {
		go maintenance.Start(ctx, store, maintenance.DefaultConfig(cfg), logger)
	}

	router := api.NewRouter(api.Dependencies{
		Store:          store,
		Refresher:      loader,
		Tasks:          runner,
		Cache:          appCache,
		Metrics:        m,
		MetricsHandler: metrics.NewMetricsHandler(),
		Logger:         logger,
	}, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting NFL data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		logger.Error("Background tasks did not stop", "error", err)
	}
	logger.Info("Server stopped")
}
