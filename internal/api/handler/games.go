package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gamecenter/nfl-data/internal/api/respond"
	"github.com/gamecenter/nfl-data/internal/cache"
	"github.com/gamecenter/nfl-data/internal/config"
)

const gamesCachePrefix = "games:"

// GetGames returns the stored games of one week.
// @Summary Games for a week
// @Description Returns the stored games of one week in kickoff order, with display date, status and both teams. Regular season unless season_type says otherwise.
// @Tags games
// @Produce json
// @Param week query int true "Week number"
// @Param season_start query int false "Season start year (defaults to current)"
// @Param season_type query int false "Season type: 1 pre, 2 regular (default), 3 post"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /games [get]
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("week") == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_WEEK", "week query parameter is required")
		return
	}
	week, ok := intQuery(w, r, "week", 0, 1, 25)
	if !ok {
		return
	}
	lo, hi := seasonBounds()
	season, ok := intQuery(w, r, "season_start", h.cfg.DefaultSeason(), lo, hi)
	if !ok {
		return
	}
	seasonType, ok := intQuery(w, r, "season_type", config.SeasonTypeRegular, config.SeasonTypePreseason, config.SeasonTypePostseason)
	if !ok {
		return
	}

	key := fmt.Sprintf("%s%d:%d:%d", gamesCachePrefix, week, season, seasonType)
	h.serveCached(w, r, key, cache.TTLGames, func(ctx context.Context) (any, error) {
		games, err := h.query.GamesForWeek(ctx, week, season, seasonType)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"week":         week,
			"season_start": season,
			"season":       config.SeasonLabel(season),
			"season_type":  seasonType,
			"games":        games,
		}, nil
	})
}

type refreshWeekRequest struct {
	Week        flexInt `json:"week" validate:"required,min=1,max=25" swaggertype:"integer"`
	SeasonStart flexInt `json:"season_start" validate:"omitempty,min=2000,max=2100" swaggertype:"integer"`
	SeasonType  flexInt `json:"season_type" validate:"omitempty,oneof=1 2 3" swaggertype:"integer"`
}

// RefreshWeek loads the scoreboards of every date in a calendar week.
// @Summary Refresh a week
// @Description Resolves a week to its calendar dates, loads each day's scoreboard and upserts every game. Runs synchronously.
// @Tags refresh
// @Accept json
// @Produce json
// @Param body body refreshWeekRequest true "Week to refresh"
// @Success 200 {object} seed.WeekResult
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /refresh-week [post]
func (h *Handler) RefreshWeek(w http.ResponseWriter, r *http.Request) {
	var req refreshWeekRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	season := req.SeasonStart.Or(h.cfg.DefaultSeason())
	seasonType := req.SeasonType.Or(config.SeasonTypeRegular)

	result, err := h.refresher.RefreshWeek(r.Context(), season, seasonType, int(req.Week))
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	if result.GamesUpdated > 0 {
		h.cache.DeletePrefix(gamesCachePrefix)
	}
	respond.WriteJSONObject(w, http.StatusOK, result)
}
