// Command ingest is the NFL data ingestion CLI.
//
// Usage:
//
//	nfl-ingest teams
//	nfl-ingest rosters --team 12
//	nfl-ingest scoreboard --date 20250907
//	nfl-ingest week --season 2025 --week 1
//	nfl-ingest schedule --season 2025
//	nfl-ingest stats --season 2025 --replace
//	nfl-ingest initial --season 2025
//	nfl-ingest migrate status
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/db"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/maintenance"
	"github.com/gamecenter/nfl-data/internal/metrics"
	"github.com/gamecenter/nfl-data/internal/nfl"
	"github.com/gamecenter/nfl-data/internal/provider/espn"
	"github.com/gamecenter/nfl-data/internal/seed"
)

var logger = newLogger(false)

// newLogger renders slog records through charmbracelet/log for terminals.
func newLogger(debug bool) *slog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
		Prefix:          "ingest",
	})
	return slog.New(handler)
}

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	var debug bool
	root := &cobra.Command{
		Use:           "nfl-ingest",
		Short:         "NFL data ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				logger = newLogger(true)
			}
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(teamsCmd())
	root.AddCommand(detailsCmd())
	root.AddCommand(rostersCmd())
	root.AddCommand(scoreboardCmd())
	root.AddCommand(weekCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(initialCmd())
	root.AddCommand(currentCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(pruneCmd())
	root.AddCommand(countsCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Entity commands
// --------------------------------------------------------------------------

func teamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "Load the league team list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				return report("Teams", env.loader.LoadAllTeams(ctx), start)
			})
		},
	}
}

func detailsCmd() *cobra.Command {
	var teamID int
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Load team records, standings and next games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				if teamID > 0 {
					return report("Team details", env.loader.LoadTeamDetails(ctx, teamID), start)
				}
				return report("Team details", env.loader.LoadAllTeamDetails(ctx), start)
			})
		},
	}
	cmd.Flags().IntVar(&teamID, "team", 0, "Team ID (all teams when omitted)")
	return cmd
}

func rostersCmd() *cobra.Command {
	var teamID int
	cmd := &cobra.Command{
		Use:   "rosters",
		Short: "Load team rosters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				if teamID > 0 {
					return report("Roster", env.loader.LoadRoster(ctx, teamID), start)
				}
				return report("Rosters", env.loader.LoadAllRosters(ctx), start)
			})
		},
	}
	cmd.Flags().IntVar(&teamID, "team", 0, "Team ID (all teams when omitted)")
	return cmd
}

// --------------------------------------------------------------------------
// Games and schedules
// --------------------------------------------------------------------------

func scoreboardCmd() *cobra.Command {
	var date, from, to string
	cmd := &cobra.Command{
		Use:   "scoreboard",
		Short: "Load scoreboards for one date or an inclusive date range (YYYYMMDD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" && (from == "" || to == "") {
				date = nfl.ScoreboardDate(time.Now())
			}
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				if date != "" {
					return report("Scoreboard "+date, env.loader.LoadScoreboard(ctx, date), start)
				}
				tally, err := env.loader.LoadScoreboardRange(ctx, from, to)
				if err != nil {
					return err
				}
				return report(fmt.Sprintf("Scoreboards %s..%s", from, to), tally, start)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Scoreboard date (defaults to today, Eastern)")
	cmd.Flags().StringVar(&from, "from", "", "First date of a range")
	cmd.Flags().StringVar(&to, "to", "", "Last date of a range")
	return cmd
}

func weekCmd() *cobra.Command {
	var season, seasonType, week int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Refresh every game of one calendar week",
		RunE: func(cmd *cobra.Command, args []string) error {
			if week <= 0 {
				return fmt.Errorf("--week is required")
			}
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				result, err := env.loader.RefreshWeek(ctx, env.season(season), seasonType, week)
				if err != nil {
					return err
				}
				logger.Info("Week refresh finished",
					"season", result.Year, "week", result.Week,
					"dates", result.Dates, "message", result.Message)
				return report("Week", result.Tally, start)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (defaults to SEASON_START or the season in progress)")
	cmd.Flags().IntVar(&seasonType, "type", config.SeasonTypeRegular, "Season type (1=pre, 2=regular, 3=post)")
	cmd.Flags().IntVar(&week, "week", 0, "Week number")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var season, week, weeks int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Load week schedules with calendar entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				if week > 0 {
					return report("Schedule", env.loader.LoadSchedule(ctx, env.season(season), week), start)
				}
				return report("Season schedule", env.loader.LoadSeasonSchedule(ctx, env.season(season), weeks), start)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (defaults to SEASON_START or the season in progress)")
	cmd.Flags().IntVar(&week, "week", 0, "Single week (whole season when omitted)")
	cmd.Flags().IntVar(&weeks, "weeks", config.RegularSeasonWeeks, "Number of weeks in a season load")
	return cmd
}

// --------------------------------------------------------------------------
// Statistics
// --------------------------------------------------------------------------

func statsCmd() *cobra.Command {
	var season, teamID int
	var replace bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Load regular season team statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				if teamID > 0 {
					return report("Team stats", env.loader.LoadTeamStats(ctx, teamID, env.season(season)), start)
				}
				tally, err := env.loader.LoadAllTeamStats(ctx, env.season(season), replace)
				if err != nil {
					return err
				}
				if replace {
					_, _ = maintenance.Prune(ctx, env.store, env.cfg.GenerationRetain, logger)
				}
				return report("Team stats", tally, start)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (defaults to SEASON_START or the season in progress)")
	cmd.Flags().IntVar(&teamID, "team", 0, "Single team ID (all teams when omitted)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Rebuild the stats collections and swap them in")
	return cmd
}

func initialCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "initial",
		Short: "Load teams, details, rosters, current games, schedule and stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				return report("Initial load", env.loader.LoadInitialData(ctx, env.season(season)), start)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (defaults to SEASON_START or the season in progress)")
	return cmd
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Refresh the current week, or today's scoreboard outside the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				start := time.Now()
				return report("Current games", env.loader.LoadCurrentGames(ctx), start)
			})
		},
	}
}

// --------------------------------------------------------------------------
// Store maintenance
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			return db.Migrate(cmd.Context(), cfg.DatabaseURL, logger)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied state of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			statuses, err := db.MigrationStatus(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				logger.Info("Migration",
					"version", s.Source.Version,
					"file", s.Source.Path,
					"state", s.State,
					"applied_at", s.AppliedAt)
			}
			return nil
		},
	})
	return cmd
}

func pruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete superseded collection generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				if olderThan == 0 {
					olderThan = env.cfg.GenerationRetain
				}
				n, err := maintenance.Prune(ctx, env.store, olderThan, logger)
				if err != nil {
					return err
				}
				logger.Info("Prune finished", "deleted", n, "older_than", olderThan)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum age of pruned generations (defaults to GENERATION_RETAIN_HOURS)")
	return cmd
}

func countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Log the document count of every collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(func(ctx context.Context, env *ingestEnv) error {
				maintenance.Report(ctx, env.store, logger)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type ingestEnv struct {
	cfg    *config.Config
	store  docstore.Store
	loader *seed.Loader
}

// season resolves a --season flag, 0 meaning the configured default.
func (e *ingestEnv) season(flag int) int {
	if flag > 0 {
		return flag
	}
	return e.cfg.DefaultSeason()
}

// runIngest handles config loading, store setup and context cancellation.
func runIngest(fn func(ctx context.Context, env *ingestEnv) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, closeStore, err := docstore.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	source := espn.NewFromConfig(cfg, metrics.Nop{}, logger)
	loader := seed.NewLoader(store, source, logger, seed.WithStatsDelay(cfg.StatsRequestDelay))
	return fn(ctx, &ingestEnv{cfg: cfg, store: store, loader: loader})
}

func loadDatabaseConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// report logs a tally with its errors. Failed items do not fail the command.
func report(what string, tally seed.Tally, start time.Time) error {
	logger.Info(what+" finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"summary", tally.Summary())
	for _, e := range tally.Errors {
		logger.Error("ingest error", "error", e)
	}
	return nil
}
