// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Season defaults
// --------------------------------------------------------------------------

// SeasonRolloverMonth is the first month counted in a new season start year.
// Games from January through July belong to the season that began the year
// before.
const SeasonRolloverMonth = time.August

// SeasonStartFor returns the start year of the season in progress at t.
func SeasonStartFor(t time.Time) int {
	if t.Month() < SeasonRolloverMonth {
		return t.Year() - 1
	}
	return t.Year()
}

// CurrentSeason returns the start year of the season in progress now.
func CurrentSeason() int {
	return SeasonStartFor(time.Now())
}

// RegularSeasonWeeks is the number of regular season weeks loaded by a
// full-season schedule sync.
const RegularSeasonWeeks = 18

// Season types as published by the upstream provider.
const (
	SeasonTypePreseason  = 1
	SeasonTypeRegular    = 2
	SeasonTypePostseason = 3
)

// --------------------------------------------------------------------------
// Collection names, one document collection per entity type
// --------------------------------------------------------------------------

const (
	TeamsCollection           = "teams"
	TeamDetailsCollection     = "team_details"
	PlayersCollection         = "players"
	GamesCollection           = "games"
	TeamSeasonStatsCollection = "team_season_stats"
	TeamStatListsCollection   = "team_stat_lists"
	SchedulesCollection       = "schedules"
)

// Collections lists every collection the loader writes to.
var Collections = []string{
	TeamsCollection,
	TeamDetailsCollection,
	PlayersCollection,
	GamesCollection,
	TeamSeasonStatsCollection,
	TeamStatListsCollection,
	SchedulesCollection,
}

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
	AutoMigrate    bool

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (inbound)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstream (ESPN)
	ESPNTimeout           time.Duration
	ESPNRequestsPerMinute int
	ESPNMaxRetries        int

	// Sync
	SeasonStart        int // 0 follows the clock
	StatsRequestDelay  time.Duration
	GenerationRetain   time.Duration
	MaintenanceEnabled bool

	// Cache
	CacheEnabled bool

	// Queries
	TeamLookupFallback bool // resolve abbreviations from the franchise table
}

// Load reads configuration from environment variables with sensible defaults.
// The database URL is optional here; commands that need it call RequireDatabase.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("POSTGRES_URL", ""))

	cfg := &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		AutoMigrate:    envBool("DB_AUTO_MIGRATE", true),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		ESPNTimeout:           time.Duration(envInt("ESPN_TIMEOUT_SECONDS", 10)) * time.Second,
		ESPNRequestsPerMinute: envInt("ESPN_REQUESTS_PER_MINUTE", 240),
		ESPNMaxRetries:        envInt("ESPN_MAX_RETRIES", 3),

		SeasonStart:        envInt("SEASON_START", 0),
		StatsRequestDelay:  time.Duration(envInt("STATS_REQUEST_DELAY_MS", 500)) * time.Millisecond,
		GenerationRetain:   time.Duration(envInt("GENERATION_RETAIN_HOURS", 6)) * time.Hour,
		MaintenanceEnabled: envBool("MAINTENANCE_ENABLED", true),

		CacheEnabled: envBool("CACHE_ENABLED", true),

		TeamLookupFallback: envBool("TEAM_LOOKUP_FALLBACK", false),
	}

	if cfg.ESPNRequestsPerMinute <= 0 {
		return nil, fmt.Errorf("ESPN_REQUESTS_PER_MINUTE must be positive, got %d", cfg.ESPNRequestsPerMinute)
	}
	if cfg.SeasonStart != 0 && (cfg.SeasonStart < 2000 || cfg.SeasonStart > 2100) {
		return nil, fmt.Errorf("SEASON_START must be a year between 2000 and 2100, got %d", cfg.SeasonStart)
	}
	if cfg.ESPNMaxRetries < 0 {
		return nil, fmt.Errorf("ESPN_MAX_RETRIES must not be negative, got %d", cfg.ESPNMaxRetries)
	}
	return cfg, nil
}

// DefaultSeason is the season start year used when a request or command
// omits one: SEASON_START when set, otherwise the season in progress.
func (c *Config) DefaultSeason() int {
	if c.SeasonStart > 0 {
		return c.SeasonStart
	}
	return CurrentSeason()
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or POSTGRES_URL must be set")
	}
	return nil
}

// UsesMemoryStore reports whether the in-process document store should be
// used instead of Postgres.
func (c *Config) UsesMemoryStore() bool {
	return c.DatabaseURL == "" || c.DatabaseURL == "memory"
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SeasonLabel formats a season start year as "2025/2026".
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d/%d", startYear, startYear+1)
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
