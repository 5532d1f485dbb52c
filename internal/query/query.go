// Package query reads stored documents and shapes them into the views the
// API serves: games for a week, head-to-head comparisons, season stat
// rankings and plain entity lookups.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/provider"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrTeamNotFound = errors.New("team not found")
	ErrUnknownStat  = errors.New("unknown stat")
)

// Service answers read queries from the document store.
type Service struct {
	store             docstore.Store
	logger            *slog.Logger
	franchiseFallback bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithFranchiseFallback lets TeamIDFromAbbreviation resolve abbreviations
// from the static franchise table when no stored game names the team.
func WithFranchiseFallback(enabled bool) ServiceOption {
	return func(s *Service) { s.franchiseFallback = enabled }
}

// NewService creates a query service over store.
func NewService(store docstore.Store, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// get decodes one document, mapping a missing key to ErrNotFound.
func get[T any](ctx context.Context, store docstore.Store, collection, key string) (*T, error) {
	var out T
	found, err := store.Get(ctx, collection, key, &out)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, key)
	}
	return &out, nil
}

// --------------------------------------------------------------------------
// Entity lookups
// --------------------------------------------------------------------------

// Teams returns every stored team ordered by team id.
func (s *Service) Teams(ctx context.Context) ([]provider.Team, error) {
	teams, err := docstore.FindInto[provider.Team](ctx, s.store, config.TeamsCollection, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	return teams, nil
}

// Team returns one stored team.
func (s *Service) Team(ctx context.Context, teamID int) (*provider.Team, error) {
	return get[provider.Team](ctx, s.store, config.TeamsCollection, provider.TeamKey(teamID))
}

// TeamDetails returns one team's stored record and next game.
func (s *Service) TeamDetails(ctx context.Context, teamID int) (*provider.TeamDetails, error) {
	return get[provider.TeamDetails](ctx, s.store, config.TeamDetailsCollection, provider.TeamKey(teamID))
}

// Roster returns the stored players of one team ordered by jersey number,
// players without a number last.
func (s *Service) Roster(ctx context.Context, teamID int) ([]provider.Player, error) {
	players, err := docstore.FindInto[provider.Player](ctx, s.store, config.PlayersCollection,
		docstore.Where(docstore.Eq("team_id", strconv.Itoa(teamID))))
	if err != nil {
		return nil, fmt.Errorf("list roster %d: %w", teamID, err)
	}
	sort.SliceStable(players, func(i, j int) bool {
		a, errA := strconv.Atoi(players[i].Jersey)
		b, errB := strconv.Atoi(players[j].Jersey)
		switch {
		case errA != nil && errB != nil:
			return players[i].PlayerID < players[j].PlayerID
		case errA != nil:
			return false
		case errB != nil:
			return true
		default:
			return a < b
		}
	})
	return players, nil
}

// Schedule returns the stored schedule document of one week.
func (s *Service) Schedule(ctx context.Context, year, week int) (*provider.Schedule, error) {
	return get[provider.Schedule](ctx, s.store, config.SchedulesCollection, provider.ScheduleKey(year, week))
}

// TeamStatList returns one team's flat stat list, or nil when none is
// stored.
func (s *Service) TeamStatList(ctx context.Context, teamID, season, seasonType int) (*provider.TeamStatList, error) {
	list, err := get[provider.TeamStatList](ctx, s.store, config.TeamStatListsCollection,
		provider.TeamStatsKey(teamID, season, seasonType))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return list, err
}
