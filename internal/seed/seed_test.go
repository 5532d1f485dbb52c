package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/metrics"
	"github.com/gamecenter/nfl-data/internal/nfl"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// fakeSource serves canned records and remembers what was requested.
type fakeSource struct {
	mu           sync.Mutex
	teams        provider.Batch[provider.Team]
	details      map[int]*provider.TeamDetails
	rosters      map[int]provider.Batch[provider.Player]
	scoreboards  map[string]provider.Batch[provider.Game]
	schedules    map[int]*provider.Schedule
	stats        map[int]*provider.TeamStats
	dateRequests []string
	statRequests []int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		details:     map[int]*provider.TeamDetails{},
		rosters:     map[int]provider.Batch[provider.Player]{},
		scoreboards: map[string]provider.Batch[provider.Game]{},
		schedules:   map[int]*provider.Schedule{},
		stats:       map[int]*provider.TeamStats{},
	}
}

func (f *fakeSource) Teams(context.Context) provider.Batch[provider.Team] { return f.teams }

func (f *fakeSource) TeamDetails(_ context.Context, teamID int) *provider.TeamDetails {
	return f.details[teamID]
}

func (f *fakeSource) Roster(_ context.Context, teamID int) provider.Batch[provider.Player] {
	return f.rosters[teamID]
}

func (f *fakeSource) Scoreboard(_ context.Context, date string) provider.Batch[provider.Game] {
	f.mu.Lock()
	f.dateRequests = append(f.dateRequests, date)
	f.mu.Unlock()
	if b, ok := f.scoreboards[date]; ok {
		return b
	}
	return provider.Batch[provider.Game]{Items: []provider.Game{}, Fetched: true}
}

func (f *fakeSource) Schedule(_ context.Context, _, week int) *provider.Schedule {
	return f.schedules[week]
}

func (f *fakeSource) TeamStats(_ context.Context, teamID, _, _ int) *provider.TeamStats {
	f.mu.Lock()
	f.statRequests = append(f.statRequests, teamID)
	f.mu.Unlock()
	return f.stats[teamID]
}

func teamStats(teamID, season int, passingYards float64) *provider.TeamStats {
	return &provider.TeamStats{
		Season: &provider.TeamSeasonStats{TeamID: teamID, Season: season, SeasonType: 2,
			AllStats: map[string]map[string]provider.StatValue{"passing": {"net_passing_yards": {Value: passingYards}}}},
		List: &provider.TeamStatList{TeamID: teamID, Season: season, SeasonType: 2,
			Stats: []provider.StatEntry{{Category: "passing", Name: "net_passing_yards", Value: passingYards}}},
	}
}

func game(id string, week int) provider.Game {
	return provider.Game{GameID: id, Week: week, Season: 2025, SeasonLabel: "2025/2026",
		HomeTeam: provider.Competitor{TeamID: 12, Abbreviation: "KC"},
		AwayTeam: provider.Competitor{TeamID: 7, Abbreviation: "DEN"}}
}

func newTestLoader(src Source, store docstore.Store, opts ...Option) *Loader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(store, src, logger, opts...)
}

func TestTally(t *testing.T) {
	var a Tally
	a.Created = 2
	a.AddErrorf("team %d failed", 3)
	b := Tally{Updated: 4}
	b.AddError("boom")
	a.Add(b)

	assert.Equal(t, 2, a.Created)
	assert.Equal(t, 4, a.Updated)
	assert.Equal(t, 2, a.Failed)
	assert.Equal(t, []string{"team 3 failed", "boom"}, a.Errors)
	assert.Equal(t, 6, a.Written())
	assert.Equal(t, "created=2 updated=4 failed=2", a.Summary())
}

func TestLoadAllTeamsIsIdempotent(t *testing.T) {
	src := newFakeSource()
	src.teams = provider.Batch[provider.Team]{
		Items:   []provider.Team{{TeamID: 12, Abbreviation: "KC"}, {TeamID: 7, Abbreviation: "DEN"}},
		Dropped: 1,
		Fetched: true,
	}
	store := docstore.NewMemory()
	m := metrics.NewMock()
	loader := newTestLoader(src, store, WithMetrics(m))
	ctx := context.Background()

	first := loader.LoadAllTeams(ctx)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 1, first.Failed, "dropped entries count as failures")

	second := loader.LoadAllTeams(ctx)
	assert.Zero(t, second.Created)
	assert.Equal(t, 2, second.Updated)

	n, err := store.Count(ctx, config.TeamsCollection)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var kc provider.Team
	found, err := store.Get(ctx, config.TeamsCollection, "12", &kc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "KC", kc.Abbreviation)

	assert.Equal(t, 2, m.StoreWrites(config.TeamsCollection, "created"))
	assert.Equal(t, 2, m.StoreWrites(config.TeamsCollection, "updated"))
}

func TestLoadAllTeamsFetchFailure(t *testing.T) {
	loader := newTestLoader(newFakeSource(), docstore.NewMemory())
	tally := loader.LoadAllTeams(context.Background())
	assert.Equal(t, 1, tally.Failed)
	assert.Zero(t, tally.Written())
}

func TestBulkOperationsContinuePastFailures(t *testing.T) {
	src := newFakeSource()
	src.details[12] = &provider.TeamDetails{TeamID: 12}
	src.details[25] = &provider.TeamDetails{TeamID: 25}
	src.rosters[12] = provider.Batch[provider.Player]{
		Items:   []provider.Player{{PlayerID: 1, TeamID: 12}, {PlayerID: 2, TeamID: 12}},
		Fetched: true,
	}
	loader := newTestLoader(src, docstore.NewMemory())
	ctx := context.Background()

	details := loader.LoadAllTeamDetails(ctx)
	assert.Equal(t, 2, details.Created)
	assert.Equal(t, len(nfl.TeamIDs())-2, details.Failed)

	rosters := loader.LoadAllRosters(ctx)
	assert.Equal(t, 2, rosters.Created)
	assert.Equal(t, len(nfl.TeamIDs())-1, rosters.Failed)
}

func TestRefreshWeekLoadsEveryDate(t *testing.T) {
	src := newFakeSource()
	src.scoreboards["20250904"] = provider.Batch[provider.Game]{Items: []provider.Game{game("1", 1)}, Fetched: true}
	src.scoreboards["20250907"] = provider.Batch[provider.Game]{Items: []provider.Game{game("2", 1), game("3", 1)}, Fetched: true}
	store := docstore.NewMemory()
	loader := newTestLoader(src, store)

	res, err := loader.RefreshWeek(context.Background(), 2025, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, config.SeasonTypeRegular, res.SeasonType)
	assert.Equal(t, []string{"20250903", "20250904", "20250905", "20250906", "20250907", "20250908", "20250909"}, res.Dates)
	assert.Equal(t, res.Dates, src.dateRequests)
	assert.Equal(t, 3, res.GamesUpdated)
	assert.Equal(t, "updated 3 games", res.Message)

	n, err := store.Count(context.Background(), config.GamesCollection)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRefreshWeekWithoutGames(t *testing.T) {
	loader := newTestLoader(newFakeSource(), docstore.NewMemory())
	res, err := loader.RefreshWeek(context.Background(), 2025, 2, 5)
	require.NoError(t, err)
	assert.Zero(t, res.GamesUpdated)
	assert.Equal(t, "no games found", res.Message)
}

func TestRefreshWeekUnknownWeek(t *testing.T) {
	src := newFakeSource()
	loader := newTestLoader(src, docstore.NewMemory())
	res, err := loader.RefreshWeek(context.Background(), 2025, 2, 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWeekNotFound))
	assert.Zero(t, res.GamesUpdated)
	assert.Empty(t, src.dateRequests, "nothing is fetched for an unknown week")
}

func TestLoadScoreboardRange(t *testing.T) {
	src := newFakeSource()
	loader := newTestLoader(src, docstore.NewMemory())

	_, err := loader.LoadScoreboardRange(context.Background(), "20251101", "20251103")
	require.NoError(t, err)
	assert.Equal(t, []string{"20251101", "20251102", "20251103"}, src.dateRequests)

	_, err = loader.LoadScoreboardRange(context.Background(), "20251103", "20251101")
	assert.Error(t, err)
	_, err = loader.LoadScoreboardRange(context.Background(), "nope", "20251101")
	assert.Error(t, err)
}

func TestLoadSeasonSchedule(t *testing.T) {
	src := newFakeSource()
	src.schedules[1] = &provider.Schedule{Year: 2025, Week: 1}
	src.schedules[2] = &provider.Schedule{Year: 2025, Week: 2}
	store := docstore.NewMemory()
	loader := newTestLoader(src, store)

	tally := loader.LoadSeasonSchedule(context.Background(), 2025, 3)
	assert.Equal(t, 2, tally.Created)
	assert.Equal(t, 1, tally.Failed)

	var sched provider.Schedule
	found, err := store.Get(context.Background(), config.SchedulesCollection, "2025:2", &sched)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLoadAllTeamStatsUpserts(t *testing.T) {
	src := newFakeSource()
	src.stats[12] = teamStats(12, 2025, 3000)
	store := docstore.NewMemory()
	loader := newTestLoader(src, store)

	tally, err := loader.LoadAllTeamStats(context.Background(), 2025, false)
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Created, "one document per statistics shape")
	assert.Equal(t, len(nfl.TeamIDs())-1, tally.Failed)
	assert.Len(t, src.statRequests, len(nfl.TeamIDs()))
}

func TestReplaceAllTeamStatsSwapsGenerations(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	// Existing documents: last season, this season for 12 and 25, and a
	// stale key for a team outside the franchise table.
	for _, s := range []*provider.TeamStats{
		teamStats(12, 2024, 100),
		teamStats(12, 2025, 200),
		teamStats(25, 2025, 300),
		teamStats(99, 2025, 400),
	} {
		key := provider.TeamStatsKey(s.Season.TeamID, s.Season.Season, 2)
		_, err := store.Upsert(ctx, config.TeamSeasonStatsCollection, key, s.Season)
		require.NoError(t, err)
		_, err = store.Upsert(ctx, config.TeamStatListsCollection, key, s.List)
		require.NoError(t, err)
	}

	src := newFakeSource()
	src.stats[12] = teamStats(12, 2025, 250)
	src.stats[7] = teamStats(7, 2025, 50)
	// 25 fails and must be carried forward.
	loader := newTestLoader(src, store)

	tally, err := loader.LoadAllTeamStats(ctx, 2025, true)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Created)
	assert.Equal(t, 1, tally.Updated)

	for _, coll := range []string{config.TeamSeasonStatsCollection, config.TeamStatListsCollection} {
		docs, err := store.Find(ctx, coll, docstore.Query{})
		require.NoError(t, err)
		var keys []string
		for _, d := range docs {
			keys = append(keys, d.Key)
		}
		assert.ElementsMatch(t, []string{"12:2024:2", "12:2025:2", "25:2025:2", "7:2025:2"}, keys, coll)
	}

	var list provider.TeamStatList
	found, err := store.Get(ctx, config.TeamStatListsCollection, "12:2025:2", &list)
	require.NoError(t, err)
	require.True(t, found)
	entry, ok := list.Find("passing", "net_passing_yards")
	require.True(t, ok)
	assert.Equal(t, 250.0, entry.Value)
}

func TestReplaceAllTeamStatsAbortsWhenNothingFetched(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	s := teamStats(12, 2025, 200)
	_, err := store.Upsert(ctx, config.TeamStatListsCollection, "12:2025:2", s.List)
	require.NoError(t, err)

	loader := newTestLoader(newFakeSource(), store)
	tally, err := loader.LoadAllTeamStats(ctx, 2025, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStatsFetched))
	assert.Equal(t, len(nfl.TeamIDs()), tally.Failed)

	n, err := store.Count(ctx, config.TeamStatListsCollection)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing documents stay visible")
}

func TestLoadAllTeamStatsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := newFakeSource()
	loader := newTestLoader(src, docstore.NewMemory(), WithStatsDelay(time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := loader.LoadAllTeamStats(ctx, 2025, true)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("stats refresh did not stop after cancel")
	}
	assert.LessOrEqual(t, len(src.statRequests), 1)
}

func TestCarryForward(t *testing.T) {
	keep := carryForward(2025, 2, map[int]bool{25: true})
	assert.True(t, keep("12:2024:2"))
	assert.True(t, keep("12:2025:3"))
	assert.True(t, keep("25:2025:2"))
	assert.False(t, keep("12:2025:2"))
	assert.False(t, keep("x:2025:2"))
}

func TestLoadCurrentGamesUsesCalendarWeek(t *testing.T) {
	src := newFakeSource()
	clock := func() time.Time { return time.Date(2025, 9, 7, 20, 0, 0, 0, time.UTC) }
	loader := newTestLoader(src, docstore.NewMemory(), WithClock(clock))

	loader.LoadCurrentGames(context.Background())
	assert.Len(t, src.dateRequests, 7)

	src.dateRequests = nil
	loader = newTestLoader(src, docstore.NewMemory(), WithClock(func() time.Time {
		return time.Date(2025, 7, 4, 16, 0, 0, 0, time.UTC)
	}))
	loader.LoadCurrentGames(context.Background())
	assert.Equal(t, []string{"20250704"}, src.dateRequests)
}

func TestLoadInitialData(t *testing.T) {
	src := newFakeSource()
	src.teams = provider.Batch[provider.Team]{Items: []provider.Team{{TeamID: 12}}, Fetched: true}
	src.details[12] = &provider.TeamDetails{TeamID: 12}
	src.schedules[1] = &provider.Schedule{Year: 2025, Week: 1}
	src.stats[12] = teamStats(12, 2025, 1)
	store := docstore.NewMemory()
	loader := newTestLoader(src, store, WithClock(func() time.Time {
		return time.Date(2025, 7, 4, 16, 0, 0, 0, time.UTC)
	}))

	tally := loader.LoadInitialData(context.Background(), 2025)
	assert.Equal(t, 5, tally.Created)
	assert.Positive(t, tally.Failed)

	for _, coll := range []string{
		config.TeamsCollection, config.TeamDetailsCollection, config.SchedulesCollection,
		config.TeamSeasonStatsCollection, config.TeamStatListsCollection,
	} {
		n, err := store.Count(context.Background(), coll)
		require.NoError(t, err)
		assert.Equal(t, 1, n, coll)
	}
}
