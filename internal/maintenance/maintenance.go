// Package maintenance runs periodic housekeeping for the document store as
// Go tickers inside the API process.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PruneInterval  time.Duration // Drop superseded collection generations
	PruneOlderThan time.Duration // Age a superseded generation must reach
	ReportInterval time.Duration // Log per-collection document counts
}

// DefaultConfig returns production defaults, taking the retention window
// from cfg.
func DefaultConfig(cfg *config.Config) Config {
	retain := 6 * time.Hour
	if cfg != nil && cfg.GenerationRetain > 0 {
		retain = cfg.GenerationRetain
	}
	return Config{
		PruneInterval:  30 * time.Minute,
		PruneOlderThan: retain,
		ReportInterval: 1 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, store docstore.Store, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"prune", cfg.PruneInterval,
		"prune_older_than", cfg.PruneOlderThan,
		"report", cfg.ReportInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.PruneInterval > 0 {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { _, _ = Prune(ctx, store, cfg.PruneOlderThan, logger) })
	}

	if cfg.ReportInterval > 0 {
		t := time.NewTicker(cfg.ReportInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { Report(ctx, store, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// Prune deletes documents of superseded generations older than olderThan.
// The ingest CLI calls it directly after a stats replace.
func Prune(ctx context.Context, store docstore.Store, olderThan time.Duration, logger *slog.Logger) (int, error) {
	start := time.Now()
	n, err := store.PruneGenerations(ctx, olderThan)
	if err != nil {
		logger.Warn("Prune: failed to delete old generations", "error", err)
		return 0, err
	}
	if n > 0 {
		logger.Info("Prune: deleted old generation documents",
			"count", n, "duration", time.Since(start).Round(time.Millisecond))
	}
	return n, nil
}

// Report logs the current document count of every collection and returns
// them keyed by collection.
func Report(ctx context.Context, store docstore.Store, logger *slog.Logger) map[string]int {
	counts := make(map[string]int, len(config.Collections))
	args := make([]any, 0, 2*len(config.Collections))
	for _, c := range config.Collections {
		n, err := store.Count(ctx, c)
		if err != nil {
			logger.Warn("Report: failed to count collection", "collection", c, "error", err)
			continue
		}
		counts[c] = n
		args = append(args, c, n)
	}
	logger.Info("Collection sizes", args...)
	return counts
}
