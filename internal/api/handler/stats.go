package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gamecenter/nfl-data/internal/api/respond"
	"github.com/gamecenter/nfl-data/internal/cache"
	"github.com/gamecenter/nfl-data/internal/query"
	"github.com/gamecenter/nfl-data/internal/task"
)

// RefreshStatsTask is the task runner name of the full team stats refresh.
const RefreshStatsTask = "refresh-stats"

const (
	headToHeadCachePrefix  = "h2h:"
	seasonStatsCachePrefix = "season_stats:"
)

// HeadToHeadStats compares two teams' season statistics.
// @Summary Head-to-head comparison
// @Description Compares two teams' regular season stats in offense, defense and special teams buckets. Each row names the leading side; prefer-low stats lead with the smaller value.
// @Tags stats
// @Produce json
// @Param away path string true "Away team abbreviation"
// @Param home path string true "Home team abbreviation"
// @Param season query int false "Season start year (defaults to current)"
// @Success 200 {object} query.HeadToHead
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /head-to-head/{away}/{home} [get]
func (h *Handler) HeadToHeadStats(w http.ResponseWriter, r *http.Request) {
	away := strings.TrimSpace(chi.URLParam(r, "away"))
	home := strings.TrimSpace(chi.URLParam(r, "home"))
	if away == "" || home == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_TEAM", "away and home abbreviations are required")
		return
	}
	lo, hi := seasonBounds()
	season, ok := intQuery(w, r, "season", h.cfg.DefaultSeason(), lo, hi)
	if !ok {
		return
	}

	key := fmt.Sprintf("%s%s:%s:%d", headToHeadCachePrefix, strings.ToUpper(away), strings.ToUpper(home), season)
	h.serveCached(w, r, key, cache.TTLStats, func(ctx context.Context) (any, error) {
		return h.query.HeadToHead(ctx, away, home, season)
	})
}

// GetSeasonStats ranks every team on one stat.
// @Summary Season stat ranking
// @Description Ranks all teams with stored statistics on one catalogued stat, with the league average. Equal values share a rank.
// @Tags stats
// @Produce json
// @Param stat query string false "Stat key (defaults to OFFPointsPerGame)"
// @Param season query int false "Season start year (defaults to current)"
// @Success 200 {object} query.SeasonStatRanking
// @Failure 400 {object} respond.ErrorResponse
// @Router /season-stats [get]
func (h *Handler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	stat := r.URL.Query().Get("stat")
	if stat == "" {
		stat = query.DefaultStat
	}
	if _, ok := query.LookupStat(stat); !ok {
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_STAT", "Unknown stat "+stat)
		return
	}
	lo, hi := seasonBounds()
	season, ok := intQuery(w, r, "season", h.cfg.DefaultSeason(), lo, hi)
	if !ok {
		return
	}

	key := fmt.Sprintf("%s%s:%d", seasonStatsCachePrefix, stat, season)
	h.serveCached(w, r, key, cache.TTLStats, func(ctx context.Context) (any, error) {
		return h.query.SeasonStats(ctx, stat, season)
	})
}

// GetStatCatalog lists the stats GetSeasonStats can rank.
// @Summary Season stat catalog
// @Tags stats
// @Produce json
// @Success 200 {array} query.StatDefinition
// @Router /season-stats/catalog [get]
func (h *Handler) GetStatCatalog(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "stat_catalog", cache.TTLTeams, func(context.Context) (any, error) {
		return query.StatCatalog(), nil
	})
}

// --------------------------------------------------------------------------
// Stats refresh
// --------------------------------------------------------------------------

type refreshStatsRequest struct {
	SeasonStart flexInt `json:"season_start" validate:"omitempty,min=2000,max=2100" swaggertype:"integer"`
	Replace     bool    `json:"replace"`
}

type refreshStatsResponse struct {
	Status string   `json:"status"`
	Run    task.Run `json:"run"`
}

// RefreshStats starts a full team statistics refresh in the background.
// @Summary Refresh team stats
// @Description Starts loading every team's regular season statistics. With replace, both stats collections are rebuilt and swapped in at the end. Only one refresh runs at a time; a second request returns the run in flight.
// @Tags refresh
// @Accept json
// @Produce json
// @Param body body refreshStatsRequest false "Season and replace flag"
// @Success 202 {object} refreshStatsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /refresh-stats [post]
func (h *Handler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	var req refreshStatsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	season, replace := req.SeasonStart.Or(h.cfg.DefaultSeason()), req.Replace
	run, started, err := h.tasks.Start(RefreshStatsTask, func(ctx context.Context) (string, any, error) {
		tally, err := h.refresher.LoadAllTeamStats(ctx, season, replace)
		if err == nil || tally.Written() > 0 {
			h.cache.DeletePrefix(headToHeadCachePrefix)
			h.cache.DeletePrefix(seasonStatsCachePrefix)
		}
		return tally.Summary(), tally, err
	})
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "SHUTTING_DOWN", err.Error())
		return
	}

	status := "started"
	if !started {
		status = "running"
	}
	h.logger.Info("Stats refresh requested", "season", season, "replace", replace, "status", status, "run_id", run.ID)
	respond.WriteJSONObject(w, http.StatusAccepted, refreshStatsResponse{Status: status, Run: run})
}

// RefreshStatsStatus reports the latest stats refresh run.
// @Summary Stats refresh status
// @Tags refresh
// @Produce json
// @Success 200 {object} task.Run
// @Router /refresh-stats/status [get]
func (h *Handler) RefreshStatsStatus(w http.ResponseWriter, r *http.Request) {
	run, ok := h.tasks.Latest(RefreshStatsTask)
	if !ok {
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{"status": "idle"})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, run)
}

// GetTask returns one background run by id.
// @Summary Get task run
// @Tags refresh
// @Produce json
// @Param runID path string true "Run ID"
// @Success 200 {object} task.Run
// @Failure 404 {object} respond.ErrorResponse
// @Router /tasks/{runID} [get]
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	run, ok := h.tasks.Get(chi.URLParam(r, "runID"))
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Task run not found")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, run)
}
