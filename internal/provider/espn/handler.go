package espn

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/metrics"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// Handler fetches and normalizes ESPN data. Every failure is logged and
// reported as "no data": list methods return a Batch with Fetched false and
// single-document methods return nil. No method returns an error.
type Handler struct {
	client    *Client
	endpoints Endpoints
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler creates a handler over the given client and endpoint templates.
func NewHandler(client *Client, endpoints Endpoints, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client:    client,
		endpoints: endpoints,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewFromConfig builds a client and handler from the ESPN_* settings.
func NewFromConfig(cfg *config.Config, m metrics.Metrics, logger *slog.Logger) *Handler {
	client := NewClient(cfg.ESPNTimeout, cfg.ESPNRequestsPerMinute, cfg.ESPNMaxRetries, logger, WithMetrics(m))
	return NewHandler(client, DefaultEndpoints(), logger)
}

func (h *Handler) fetch(ctx context.Context, endpoint, tmpl string, params map[string]string) map[string]interface{} {
	url := BuildURL(tmpl, params)
	doc, err := h.client.getJSON(ctx, endpoint, url)
	if err != nil {
		h.logger.Error("ESPN fetch failed", "endpoint", endpoint, "url", url, "error", err)
		return nil
	}
	return doc
}

func (h *Handler) logDropped(endpoint string, dropped int) {
	if dropped > 0 {
		h.logger.Warn("Dropped upstream entries without required fields", "endpoint", endpoint, "dropped", dropped)
	}
}

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// Teams fetches the league team list.
func (h *Handler) Teams(ctx context.Context) provider.Batch[provider.Team] {
	doc := h.fetch(ctx, "teams", h.endpoints.Teams, nil)
	if doc == nil {
		return provider.Batch[provider.Team]{}
	}
	teams, dropped := NormalizeTeams(doc, h.now())
	h.logDropped("teams", dropped)
	return provider.Batch[provider.Team]{Items: teams, Dropped: dropped, Fetched: true}
}

// TeamDetails fetches one team's record and next game.
func (h *Handler) TeamDetails(ctx context.Context, teamID int) *provider.TeamDetails {
	doc := h.fetch(ctx, "team", h.endpoints.Team, map[string]string{
		"team_id": strconv.Itoa(teamID),
	})
	if doc == nil {
		return nil
	}
	details, ok := NormalizeTeamDetails(provider.Map(doc, "team"), h.now())
	if !ok {
		h.logDropped("team", 1)
		return nil
	}
	return &details
}

// Roster fetches one team's athletes.
func (h *Handler) Roster(ctx context.Context, teamID int) provider.Batch[provider.Player] {
	doc := h.fetch(ctx, "roster", h.endpoints.Roster, map[string]string{
		"team_id": strconv.Itoa(teamID),
	})
	if doc == nil {
		return provider.Batch[provider.Player]{}
	}
	players, dropped := NormalizeRoster(doc, teamID, h.now())
	h.logDropped("roster", dropped)
	return provider.Batch[provider.Player]{Items: players, Dropped: dropped, Fetched: true}
}

// --------------------------------------------------------------------------
// Games
// --------------------------------------------------------------------------

// Scoreboard fetches the games played on one date, formatted YYYYMMDD.
func (h *Handler) Scoreboard(ctx context.Context, date string) provider.Batch[provider.Game] {
	doc := h.fetch(ctx, "scoreboard", h.endpoints.Scoreboard, map[string]string{
		"date": date,
	})
	if doc == nil {
		return provider.Batch[provider.Game]{}
	}
	games, dropped := NormalizeScoreboard(doc, h.now())
	h.logDropped("scoreboard", dropped)
	return provider.Batch[provider.Game]{Items: games, Dropped: dropped, Fetched: true}
}

// Schedule fetches the schedule document for one (year, week).
func (h *Handler) Schedule(ctx context.Context, year, week int) *provider.Schedule {
	doc := h.fetch(ctx, "schedule", h.endpoints.Schedule, map[string]string{
		"year": strconv.Itoa(year),
		"week": strconv.Itoa(week),
	})
	if doc == nil {
		return nil
	}
	sched, dropped := NormalizeSchedule(doc, year, week, h.now())
	if sched == nil {
		h.logger.Warn("Schedule payload has no content", "year", year, "week", week)
		return nil
	}
	h.logDropped("schedule", dropped)
	return sched
}

// --------------------------------------------------------------------------
// Statistics
// --------------------------------------------------------------------------

// TeamStats fetches one team's season statistics in both stored shapes.
func (h *Handler) TeamStats(ctx context.Context, teamID, year, seasonType int) *provider.TeamStats {
	doc := h.fetch(ctx, "team_stats", h.endpoints.TeamStats, map[string]string{
		"team_id":     strconv.Itoa(teamID),
		"year":        strconv.Itoa(year),
		"season_type": strconv.Itoa(seasonType),
	})
	if doc == nil {
		return nil
	}
	stats := NormalizeTeamStats(doc, teamID, year, seasonType, h.now())
	if stats == nil {
		h.logger.Warn("Team statistics payload has no categories", "team_id", teamID, "season", year)
	}
	return stats
}
