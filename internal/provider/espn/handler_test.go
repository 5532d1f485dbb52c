package espn

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/nfl-data/internal/metrics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, mux http.Handler, m metrics.Metrics) *Handler {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(2*time.Second, 60000, 2, quietLogger(),
		WithBackOff(time.Millisecond, 2*time.Millisecond),
		WithMetrics(m),
	)
	h := NewHandler(client, DefaultEndpoints().WithBase(server.URL), quietLogger())
	h.now = func() time.Time { return fixedNow }
	return h
}

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	}
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t,
		"https://site.api.espn.com/apis/site/v2/sports/football/nfl/teams/12/roster",
		BuildURL(DefaultEndpoints().Roster, map[string]string{"team_id": "12"}))
	assert.Equal(t,
		"http://localhost/x?dates=20250903",
		BuildURL("http://localhost/x?dates={date}", map[string]string{"date": "20250903"}))
}

func TestEndpointsWithBase(t *testing.T) {
	e := DefaultEndpoints().WithBase("http://127.0.0.1:9999/")
	assert.Equal(t, "http://127.0.0.1:9999/apis/site/v2/sports/football/nfl/teams", e.Teams)
	assert.Equal(t, "http://127.0.0.1:9999/core/nfl/schedule?xhr=1&year={year}&week={week}", e.Schedule)
	assert.Equal(t,
		"http://127.0.0.1:9999/v2/sports/football/leagues/nfl/seasons/{year}/types/{season_type}/teams/{team_id}/statistics",
		e.TeamStats)
}

func TestHandlerFetchesAndNormalizes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams", serveFixture(t, "teams.json"))
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams/12", serveFixture(t, "team.json"))
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams/12/roster", serveFixture(t, "roster.json"))
	scoreboard := serveFixture(t, "scoreboard.json")
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20251109", r.URL.Query().Get("dates"))
		scoreboard(w, r)
	})
	schedule := serveFixture(t, "schedule.json")
	mux.HandleFunc("/core/nfl/schedule", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		assert.Equal(t, "1", r.URL.Query().Get("week"))
		schedule(w, r)
	})
	mux.HandleFunc("/v2/sports/football/leagues/nfl/seasons/2025/types/2/teams/12/statistics", serveFixture(t, "team_stats.json"))

	m := metrics.NewMock()
	h := newTestHandler(t, mux, m)
	ctx := context.Background()

	teams := h.Teams(ctx)
	assert.True(t, teams.Fetched)
	assert.Len(t, teams.Items, 2)
	assert.Equal(t, 2, teams.Dropped)

	details := h.TeamDetails(ctx, 12)
	require.NotNil(t, details)
	assert.Equal(t, 11, details.Record.Overall.Wins)

	roster := h.Roster(ctx, 12)
	assert.True(t, roster.Fetched)
	assert.Len(t, roster.Items, 2)

	games := h.Scoreboard(ctx, "20251109")
	assert.True(t, games.Fetched)
	assert.Len(t, games.Items, 2)
	assert.Equal(t, fixedNow, games.Items[0].UpdatedAt)

	sched := h.Schedule(ctx, 2025, 1)
	require.NotNil(t, sched)
	assert.Len(t, sched.Games, 2)

	stats := h.TeamStats(ctx, 12, 2025, 2)
	require.NotNil(t, stats)
	assert.Len(t, stats.List.Stats, 11)

	assert.Equal(t, 1, m.Upstream("teams", "ok"))
	assert.Equal(t, 1, m.Upstream("team_stats", "ok"))
}

func TestHandlerEmptyScoreboardIsFetched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": []}`))
	})
	h := newTestHandler(t, mux, metrics.Nop{})

	games := h.Scoreboard(context.Background(), "20250101")
	assert.True(t, games.Fetched)
	assert.Empty(t, games.Items)
}

func TestHandlerRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	teamsFixture := serveFixture(t, "teams.json")
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		teamsFixture(w, r)
	})
	m := metrics.NewMock()
	h := newTestHandler(t, mux, m)

	teams := h.Teams(context.Background())
	assert.True(t, teams.Fetched)
	assert.Len(t, teams.Items, 2)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, m.Retries("teams"))
}

func TestHandlerGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	m := metrics.NewMock()
	h := newTestHandler(t, mux, m)

	teams := h.Teams(context.Background())
	assert.False(t, teams.Fetched)
	assert.Empty(t, teams.Items)
	assert.Equal(t, int32(3), calls.Load(), "first attempt plus two retries")
	assert.Equal(t, 1, m.Upstream("teams", "http_error"))
}

func TestHandlerDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams/99", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	})
	h := newTestHandler(t, mux, metrics.Nop{})

	assert.Nil(t, h.TeamDetails(context.Background(), 99))
	assert.Equal(t, int32(1), calls.Load())
}

func TestHandlerReportsNoDataOnMalformedBodies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams/12/roster", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	mux.HandleFunc("/core/nfl/schedule", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page": {}}`))
	})
	mux.HandleFunc("/v2/sports/football/leagues/nfl/seasons/2025/types/2/teams/12/statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1, 2, 3]`))
	})
	m := metrics.NewMock()
	h := newTestHandler(t, mux, m)
	ctx := context.Background()

	roster := h.Roster(ctx, 12)
	assert.False(t, roster.Fetched)
	assert.Equal(t, 1, m.Upstream("roster", "decode_error"))

	assert.Nil(t, h.Schedule(ctx, 2025, 1))
	assert.Nil(t, h.TeamStats(ctx, 12, 2025, 2))
}

func TestHandlerHonorsCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apis/site/v2/sports/football/nfl/teams", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	h := newTestHandler(t, mux, metrics.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	teams := h.Teams(ctx)
	assert.False(t, teams.Fetched)
}
