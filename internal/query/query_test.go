package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/provider"
)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *docstore.Memory) {
	t.Helper()
	store := docstore.NewMemory()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...), store
}

func put(t *testing.T, store docstore.Store, collection, key string, doc any) {
	t.Helper()
	_, err := store.Upsert(context.Background(), collection, key, doc)
	require.NoError(t, err)
}

func storedGameDoc(id, date string, week int, home, away provider.Competitor) provider.Game {
	return provider.Game{
		GameID: id, Date: date, Week: week, Season: 2025, SeasonType: 2, SeasonLabel: "2025/2026",
		HomeTeam: home, AwayTeam: away,
	}
}

func TestLeader(t *testing.T) {
	tests := []struct {
		away, home string
		preferLow  bool
		want       string
	}{
		{"10", "7", false, LeaderAway},
		{"10", "7", true, LeaderHome},
		{"10%", "10.0", false, LeaderTie},
		{"1,401", "1,399", false, LeaderAway},
		{"3", "9", false, LeaderHome},
		{"abc", "7", false, ""},
		{"", "7", false, ""},
		{"5", "", true, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Leader(tt.away, tt.home, tt.preferLow), "%q vs %q prefer_low=%v", tt.away, tt.home, tt.preferLow)
	}
}

func TestGamesForWeek(t *testing.T) {
	svc, store := newTestService(t)
	kc := provider.Competitor{TeamID: 12, Abbreviation: "KC", DisplayName: "Kansas City Chiefs", Logo: "kc.png", Score: 28, Record: "9-1"}
	den := provider.Competitor{TeamID: 7, Abbreviation: "DEN", DisplayName: "Denver Broncos", Score: 24}

	late := storedGameDoc("2", "2025-11-10T01:20Z", 10, den, kc)
	late.Status = provider.GameStatus{Completed: true, Description: "Final", State: "post"}
	put(t, store, config.GamesCollection, "2", late)

	early := storedGameDoc("1", "2025-11-09T18:00Z", 10, kc, den)
	early.Status = provider.GameStatus{State: "in", Description: "2nd Quarter"}
	put(t, store, config.GamesCollection, "1", early)

	put(t, store, config.GamesCollection, "3", storedGameDoc("3", "2025-11-16T18:00Z", 11, kc, den))

	// A document written with the week as a string still matches.
	put(t, store, config.GamesCollection, "4", []byte(`{"game_id":"4","week":"10","season_label":"2025/2026","date":"bad-date","home_team":{"abbreviation":"SF"},"away_team":{"abbreviation":"ARI"},"status":{}}`))

	// Other season.
	other := storedGameDoc("5", "2024-11-10T18:00Z", 10, kc, den)
	other.SeasonLabel = "2024/2025"
	put(t, store, config.GamesCollection, "5", other)

	rows, err := svc.GamesForWeek(context.Background(), 10, 2025, config.SeasonTypeRegular)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "1", rows[0].GameID)
	assert.Equal(t, "Sunday, Nov 09, 2025", rows[0].Date)
	assert.Equal(t, "in", rows[0].Status)
	assert.Equal(t, "KC", rows[0].HomeTeam.Abbreviation)
	assert.Equal(t, 28, rows[0].HomeScore)
	assert.Equal(t, "9-1", rows[0].HomeTeam.Record)

	assert.Equal(t, "2", rows[1].GameID)
	assert.Equal(t, "Sunday, Nov 09, 2025", rows[1].Date, "late kickoffs stay on the Eastern game day")
	assert.Equal(t, "final", rows[1].Status)
	assert.Equal(t, "Final", rows[1].StatusText)

	assert.Equal(t, "4", rows[2].GameID)
	assert.Equal(t, "bad-date", rows[2].Date, "unparseable dates are passed through")
	assert.Equal(t, "scheduled", rows[2].Status)
	assert.Equal(t, "Scheduled", rows[2].StatusText)
}

func TestGamesForWeekEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	rows, err := svc.GamesForWeek(context.Background(), 3, 2025, config.SeasonTypeRegular)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGamesForWeekSeparatesSeasonTypes(t *testing.T) {
	svc, store := newTestService(t)
	kc := provider.Competitor{TeamID: 12, Abbreviation: "KC"}
	buf := provider.Competitor{TeamID: 2, Abbreviation: "BUF"}
	ctx := context.Background()

	put(t, store, config.GamesCollection, "reg1", storedGameDoc("reg1", "2025-09-07T17:00Z", 1, kc, buf))
	wildCard := storedGameDoc("wc1", "2026-01-10T21:30Z", 1, buf, kc)
	wildCard.SeasonType = config.SeasonTypePostseason
	put(t, store, config.GamesCollection, "wc1", wildCard)
	put(t, store, config.GamesCollection, "legacy", []byte(`{"game_id":"legacy","week":1,"season_label":"2025/2026","date":"2025-09-08T00:20Z","home_team":{},"away_team":{},"status":{}}`))

	rows, err := svc.GamesForWeek(ctx, 1, 2025, config.SeasonTypeRegular)
	require.NoError(t, err)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GameID)
	}
	assert.Equal(t, []string{"reg1", "legacy"}, ids, "stored games without a season type count as regular season")

	rows, err = svc.GamesForWeek(ctx, 1, 2025, config.SeasonTypePostseason)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "wc1", rows[0].GameID)
	assert.Equal(t, "Saturday, Jan 10, 2026", rows[0].Date)
}

func TestTeamIDFromAbbreviation(t *testing.T) {
	svc, store := newTestService(t)
	put(t, store, config.GamesCollection, "1", storedGameDoc("1", "2025-09-07T17:00Z", 1,
		provider.Competitor{TeamID: 1, Abbreviation: "ATL"},
		provider.Competitor{TeamID: 27, Abbreviation: "TB"}))
	ctx := context.Background()

	id, err := svc.TeamIDFromAbbreviation(ctx, "tb")
	require.NoError(t, err)
	assert.Equal(t, 27, id)

	id, err = svc.TeamIDFromAbbreviation(ctx, "ATL")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = svc.TeamIDFromAbbreviation(ctx, "sf")
	assert.True(t, errors.Is(err, ErrTeamNotFound), "teams absent from stored games are not found")

	_, err = svc.TeamIDFromAbbreviation(ctx, "XYZ")
	assert.True(t, errors.Is(err, ErrTeamNotFound))
	_, err = svc.TeamIDFromAbbreviation(ctx, " ")
	assert.True(t, errors.Is(err, ErrTeamNotFound))
}

func TestTeamIDFromAbbreviationFranchiseFallback(t *testing.T) {
	svc, store := newTestService(t, WithFranchiseFallback(true))
	put(t, store, config.GamesCollection, "1", storedGameDoc("1", "2025-09-07T17:00Z", 1,
		provider.Competitor{TeamID: 1, Abbreviation: "ATL"},
		provider.Competitor{TeamID: 27, Abbreviation: "TB"}))
	ctx := context.Background()

	id, err := svc.TeamIDFromAbbreviation(ctx, "tb")
	require.NoError(t, err)
	assert.Equal(t, 27, id, "stored games still win")

	id, err = svc.TeamIDFromAbbreviation(ctx, "sf")
	require.NoError(t, err)
	assert.Equal(t, 25, id)

	_, err = svc.TeamIDFromAbbreviation(ctx, "XYZ")
	assert.True(t, errors.Is(err, ErrTeamNotFound))
}

func statList(teamID int, entries ...provider.StatEntry) provider.TeamStatList {
	return provider.TeamStatList{TeamID: teamID, Season: 2025, SeasonType: 2, Stats: entries}
}

func TestHeadToHead(t *testing.T) {
	svc, store := newTestService(t, WithFranchiseFallback(true))
	logo := "kc.png"
	put(t, store, config.TeamsCollection, "12", provider.Team{TeamID: 12, Abbreviation: "KC", DisplayName: "Kansas City Chiefs", LogoURL: &logo})
	put(t, store, config.TeamStatListsCollection, "12:2025:2", statList(12,
		provider.StatEntry{Category: "passing", Name: "net_passing_yards", Value: 2756, DisplayValue: "2,756"},
		provider.StatEntry{Category: "passing", Name: "interceptions", Value: 6, DisplayValue: "6"},
		provider.StatEntry{Category: "kicking", Name: "field_goal_pct", Value: 90, DisplayValue: "90%"},
	))
	put(t, store, config.TeamStatListsCollection, "7:2025:2", statList(7,
		provider.StatEntry{Category: "passing", Name: "net_passing_yards", Value: 2100, DisplayValue: "2,100"},
		provider.StatEntry{Category: "passing", Name: "interceptions", Value: 9, DisplayValue: "9"},
		provider.StatEntry{Category: "kicking", Name: "field_goal_pct", Value: 90},
	))

	h, err := svc.HeadToHead(context.Background(), "kc", "DEN", 2025)
	require.NoError(t, err)
	assert.Equal(t, 12, h.Away.TeamID)
	assert.Equal(t, "Kansas City Chiefs", h.Away.DisplayName)
	assert.Equal(t, "kc.png", h.Away.Logo)
	assert.Equal(t, 7, h.Home.TeamID)
	assert.Equal(t, "DEN", h.Home.Abbreviation)
	assert.True(t, h.Away.StatsFound)
	assert.True(t, h.Home.StatsFound)

	rows := map[string]ComparisonRow{}
	for _, r := range append(append(h.Offense, h.Defense...), h.SpecialTeams...) {
		rows[r.Category+"."+r.Stat] = r
	}
	assert.Equal(t, LeaderAway, rows["passing.net_passing_yards"].Leader)
	assert.Equal(t, "2,756", rows["passing.net_passing_yards"].AwayValue)
	assert.True(t, rows["passing.interceptions"].PreferLow)
	assert.Equal(t, LeaderAway, rows["passing.interceptions"].Leader, "fewer interceptions lead")
	assert.Equal(t, "90", rows["kicking.field_goal_pct"].HomeValue)
	assert.Equal(t, LeaderTie, rows["kicking.field_goal_pct"].Leader)
	assert.Equal(t, "", rows["rushing.rushing_yards"].Leader)
}

func TestHeadToHeadMissingStats(t *testing.T) {
	svc, store := newTestService(t, WithFranchiseFallback(true))
	put(t, store, config.TeamStatListsCollection, "12:2025:2", statList(12,
		provider.StatEntry{Category: "passing", Name: "net_passing_yards", Value: 1, DisplayValue: "1"},
	))

	h, err := svc.HeadToHead(context.Background(), "KC", "SF", 2025)
	require.NoError(t, err)
	assert.True(t, h.Away.StatsFound)
	assert.False(t, h.Home.StatsFound)
	for _, r := range h.Offense {
		assert.Empty(t, r.HomeValue)
		assert.Empty(t, r.Leader)
	}

	_, err = svc.HeadToHead(context.Background(), "KC", "NOPE", 2025)
	assert.True(t, errors.Is(err, ErrTeamNotFound))

	strict, _ := newTestService(t)
	_, err = strict.HeadToHead(context.Background(), "KC", "SF", 2025)
	assert.True(t, errors.Is(err, ErrTeamNotFound), "without stored games neither team resolves")
}

func TestSeasonStats(t *testing.T) {
	svc, store := newTestService(t)
	put(t, store, config.TeamsCollection, "12", provider.Team{TeamID: 12, DisplayName: "Kansas City Chiefs"})
	put(t, store, config.TeamStatListsCollection, "12:2025:2", statList(12,
		provider.StatEntry{Category: "passing", Name: "interceptions", Value: 6, DisplayValue: "6"}))
	put(t, store, config.TeamStatListsCollection, "7:2025:2", statList(7,
		provider.StatEntry{Category: "passing", Name: "interceptions", Value: 9, DisplayValue: "9"}))
	put(t, store, config.TeamStatListsCollection, "25:2025:2", statList(25,
		provider.StatEntry{Category: "passing", Name: "interceptions", Value: 6, DisplayValue: "6"}))
	put(t, store, config.TeamStatListsCollection, "1:2025:2", statList(1))
	last := statList(12, provider.StatEntry{Category: "passing", Name: "interceptions", Value: 1})
	last.Season = 2024
	put(t, store, config.TeamStatListsCollection, "12:2024:2", last)

	r, err := svc.SeasonStats(context.Background(), "OFFInterceptions", 2025)
	require.NoError(t, err)
	assert.Equal(t, "Interceptions Thrown", r.StatDisplayName)
	assert.True(t, r.PreferLow)
	require.Len(t, r.Teams, 3)

	assert.Equal(t, 1, r.Teams[0].Rank)
	assert.Equal(t, "Kansas City Chiefs", r.Teams[0].DisplayName)
	assert.Equal(t, 1, r.Teams[1].Rank, "equal values share a rank")
	assert.Equal(t, "San Francisco 49ers", r.Teams[1].DisplayName)
	assert.Equal(t, 3, r.Teams[2].Rank)
	assert.Equal(t, 7, r.Teams[2].TeamID)

	assert.InDelta(t, 7.0, r.LeagueAverage, 1e-9)
	assert.Equal(t, "7.0", r.LeagueAverageDisplay)
}

func TestSeasonStatsUnknownStat(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SeasonStats(context.Background(), "Nope", 2025)
	assert.True(t, errors.Is(err, ErrUnknownStat))

	_, ok := LookupStat(DefaultStat)
	assert.True(t, ok)
	assert.NotEmpty(t, StatCatalog())
}

func TestEntityLookups(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	put(t, store, config.TeamsCollection, "25", provider.Team{TeamID: 25})
	put(t, store, config.TeamsCollection, "3", provider.Team{TeamID: 3})
	put(t, store, config.PlayersCollection, "1", provider.Player{PlayerID: 1, TeamID: 12, Jersey: "87"})
	put(t, store, config.PlayersCollection, "2", provider.Player{PlayerID: 2, TeamID: 12, Jersey: "15"})
	put(t, store, config.PlayersCollection, "3", provider.Player{PlayerID: 3, TeamID: 12})
	put(t, store, config.PlayersCollection, "4", provider.Player{PlayerID: 4, TeamID: 7, Jersey: "1"})

	teams, err := svc.Teams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, 3, teams[0].TeamID)

	roster, err := svc.Roster(ctx, 12)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{roster[0].PlayerID, roster[1].PlayerID, roster[2].PlayerID})

	_, err = svc.Team(ctx, 99)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.Schedule(ctx, 2025, 1)
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := svc.TeamStatList(ctx, 12, 2025, 2)
	require.NoError(t, err)
	assert.Nil(t, list)
}
