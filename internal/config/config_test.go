package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("SEASON_START", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UsesMemoryStore())
	assert.Error(t, cfg.RequireDatabase())
	assert.Equal(t, 10*time.Second, cfg.ESPNTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.StatsRequestDelay)
	assert.Equal(t, 3, cfg.ESPNMaxRetries)
	assert.Zero(t, cfg.SeasonStart)
	assert.False(t, cfg.TeamLookupFallback)
	assert.Equal(t, CurrentSeason(), cfg.DefaultSeason())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nfl")
	t.Setenv("STATS_REQUEST_DELAY_MS", "0")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UsesMemoryStore())
	assert.NoError(t, cfg.RequireDatabase())
	assert.Equal(t, time.Duration(0), cfg.StatsRequestDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.RateLimitEnabled)
}

func TestLoadRejectsNonPositiveRate(t *testing.T) {
	t.Setenv("ESPN_REQUESTS_PER_MINUTE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestSeasonLabel(t *testing.T) {
	assert.Equal(t, "2025/2026", SeasonLabel(2025))
	assert.Equal(t, "1999/2000", SeasonLabel(1999))
}

func TestSeasonStartFor(t *testing.T) {
	cases := []struct {
		at   time.Time
		want int
	}{
		{time.Date(2025, time.September, 7, 20, 0, 0, 0, time.UTC), 2025},
		{time.Date(2026, time.January, 10, 18, 0, 0, 0, time.UTC), 2025},
		{time.Date(2026, time.July, 31, 23, 0, 0, 0, time.UTC), 2025},
		{time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), 2026},
		{time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), 2026},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeasonStartFor(tc.at), tc.at.String())
	}
}

func TestDefaultSeasonFromEnv(t *testing.T) {
	t.Setenv("SEASON_START", "2024")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2024, cfg.DefaultSeason())

	t.Setenv("SEASON_START", "1850")
	_, err = Load()
	assert.Error(t, err)
}
