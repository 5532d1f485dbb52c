package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamecenter/nfl-data/internal/cache"
)

// GetTeams lists every stored team.
// @Summary List teams
// @Description Returns every stored team ordered by id.
// @Tags teams
// @Produce json
// @Success 200 {array} provider.Team
// @Router /teams [get]
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "teams", cache.TTLTeams, func(ctx context.Context) (any, error) {
		return h.query.Teams(ctx)
	})
}

// GetTeam returns one team.
// @Summary Get team
// @Tags teams
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} provider.Team
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /teams/{teamID} [get]
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, chi.URLParam(r, "teamID"), "team_id")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("team:%d", id), cache.TTLTeams, func(ctx context.Context) (any, error) {
		return h.query.Team(ctx, id)
	})
}

// GetTeamDetails returns a team's record, standing and next game.
// @Summary Get team details
// @Tags teams
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} provider.TeamDetails
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /teams/{teamID}/details [get]
func (h *Handler) GetTeamDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, chi.URLParam(r, "teamID"), "team_id")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("team_details:%d", id), cache.TTLTeams, func(ctx context.Context) (any, error) {
		return h.query.TeamDetails(ctx, id)
	})
}

// GetRoster returns a team's players ordered by jersey number.
// @Summary Get team roster
// @Tags teams
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {array} provider.Player
// @Failure 400 {object} respond.ErrorResponse
// @Router /teams/{teamID}/roster [get]
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, chi.URLParam(r, "teamID"), "team_id")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("roster:%d", id), cache.TTLTeams, func(ctx context.Context) (any, error) {
		return h.query.Roster(ctx, id)
	})
}

// GetSchedule returns the schedule document of one week.
// @Summary Get week schedule
// @Tags schedules
// @Produce json
// @Param year path int true "Season start year"
// @Param week path int true "Week number"
// @Success 200 {object} provider.Schedule
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /schedules/{year}/{week} [get]
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, chi.URLParam(r, "year"), "year")
	if !ok {
		return
	}
	week, ok := intParam(w, chi.URLParam(r, "week"), "week")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("schedule:%d:%d", year, week), cache.TTLSchedule, func(ctx context.Context) (any, error) {
		return h.query.Schedule(ctx, year, week)
	})
}
