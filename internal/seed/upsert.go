package seed

import (
	"context"
	"fmt"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// Upsert writes a normalized record under its natural key, fully replacing
// any existing document.
func Upsert(ctx context.Context, store docstore.Store, collection, key string, doc any) (bool, error) {
	created, err := store.Upsert(ctx, collection, key, doc)
	if err != nil {
		return false, fmt.Errorf("upsert %s/%s: %w", collection, key, err)
	}
	return created, nil
}

// upsert writes one document and records the outcome in the tally and in
// metrics.
func (l *Loader) upsert(ctx context.Context, tally *Tally, collection, key string, doc any) {
	created, err := Upsert(ctx, l.store, collection, key, doc)
	switch {
	case err != nil:
		tally.AddError(err.Error())
		l.metrics.AddStoreWrites(collection, "failed", 1)
	case created:
		tally.Created++
		l.metrics.AddStoreWrites(collection, "created", 1)
	default:
		tally.Updated++
		l.metrics.AddStoreWrites(collection, "updated", 1)
	}
}

// UpsertTeam writes a team document keyed by team id.
func (l *Loader) UpsertTeam(ctx context.Context, tally *Tally, team provider.Team) {
	l.upsert(ctx, tally, config.TeamsCollection, provider.TeamKey(team.TeamID), team)
}

// UpsertTeamDetails writes a team details document keyed by team id.
func (l *Loader) UpsertTeamDetails(ctx context.Context, tally *Tally, details provider.TeamDetails) {
	l.upsert(ctx, tally, config.TeamDetailsCollection, provider.TeamKey(details.TeamID), details)
}

// UpsertPlayer writes a player document keyed by player id.
func (l *Loader) UpsertPlayer(ctx context.Context, tally *Tally, player provider.Player) {
	l.upsert(ctx, tally, config.PlayersCollection, provider.PlayerKey(player.PlayerID), player)
}

// UpsertGame writes a game document keyed by game id.
func (l *Loader) UpsertGame(ctx context.Context, tally *Tally, game provider.Game) {
	l.upsert(ctx, tally, config.GamesCollection, game.GameID, game)
}

// UpsertSchedule writes a schedule document keyed by (year, week).
func (l *Loader) UpsertSchedule(ctx context.Context, tally *Tally, sched provider.Schedule) {
	l.upsert(ctx, tally, config.SchedulesCollection, provider.ScheduleKey(sched.Year, sched.Week), sched)
}

// UpsertTeamStats writes both statistics shapes keyed by
// (team id, season, season type).
func (l *Loader) UpsertTeamStats(ctx context.Context, tally *Tally, stats provider.TeamStats) {
	if stats.Season != nil {
		s := stats.Season
		l.upsert(ctx, tally, config.TeamSeasonStatsCollection, provider.TeamStatsKey(s.TeamID, s.Season, s.SeasonType), s)
	}
	if stats.List != nil {
		s := stats.List
		l.upsert(ctx, tally, config.TeamStatListsCollection, provider.TeamStatsKey(s.TeamID, s.Season, s.SeasonType), s)
	}
}
