package espn

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamecenter/nfl-data/internal/provider"
)

var fixedNow = time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

func loadFixture(t *testing.T, name string) map[string]interface{} {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, sonic.Unmarshal(raw, &doc))
	return doc
}

func TestNormalizeTeams(t *testing.T) {
	teams, dropped := NormalizeTeams(loadFixture(t, "teams.json"), fixedNow)
	require.Len(t, teams, 2)
	assert.Equal(t, 2, dropped)

	kc := teams[0]
	assert.Equal(t, 12, kc.TeamID)
	assert.Equal(t, "KC", kc.Abbreviation)
	assert.Equal(t, "Kansas City Chiefs", kc.DisplayName)
	require.NotNil(t, kc.LogoURL)
	assert.Equal(t, "https://a.espncdn.com/i/teamlogos/nfl/500/kc.png", *kc.LogoURL)
	require.NotNil(t, kc.Links.Clubhouse)
	assert.Equal(t, "https://www.espn.com/nfl/team/_/name/kc", *kc.Links.Clubhouse)
	require.NotNil(t, kc.Links.Roster)
	assert.Nil(t, kc.Links.Stats)
	assert.Equal(t, fixedNow, kc.UpdatedAt)

	sf := teams[1]
	assert.Equal(t, 25, sf.TeamID)
	require.NotNil(t, sf.LogoURL, "falls back to the first logo with an href")
	assert.Equal(t, "https://a.espncdn.com/i/teamlogos/nfl/500/sf.png", *sf.LogoURL)
}

func TestSelectLogoWithoutLogos(t *testing.T) {
	assert.Nil(t, selectLogo(map[string]interface{}{"id": "1"}))
	assert.Nil(t, selectLogo(map[string]interface{}{"logos": []interface{}{}}))
}

func TestNormalizeTeamDetails(t *testing.T) {
	doc := loadFixture(t, "team.json")
	details, ok := NormalizeTeamDetails(provider.Map(doc, "team"), fixedNow)
	require.True(t, ok)

	assert.Equal(t, 12, details.TeamID)
	assert.Equal(t, "11-2", details.RecordSummary)
	assert.Equal(t, "1st in AFC West", details.StandingSummary)
	assert.Equal(t, 11, details.Record.Overall.Wins)
	assert.Equal(t, 2, details.Record.Overall.Losses)
	assert.Equal(t, 13, details.Record.Overall.GamesPlayed)
	assert.InDelta(t, 0.846, details.Record.Overall.WinPercent, 1e-9)
	assert.Equal(t, 6, details.Record.Home.Wins)
	assert.Equal(t, "6-1", details.Record.Home.Summary)
	assert.Equal(t, 0, details.Record.Road.Losses, "negative counts clamp to zero")
	require.NotNil(t, details.NextGame)
	assert.Equal(t, "LAC @ KC", details.NextGame.ShortName)
}

func TestNormalizeTeamDetailsWithoutRecord(t *testing.T) {
	details, ok := NormalizeTeamDetails(map[string]interface{}{"id": 3.0}, fixedNow)
	require.True(t, ok)
	assert.Equal(t, provider.OverallRecord{}, details.Record.Overall)
	assert.Nil(t, details.NextGame)

	_, ok = NormalizeTeamDetails(nil, fixedNow)
	assert.False(t, ok)
}

func TestNormalizeRoster(t *testing.T) {
	players, dropped := NormalizeRoster(loadFixture(t, "roster.json"), 12, fixedNow)
	require.Len(t, players, 2)
	assert.Equal(t, 1, dropped)

	pm := players[0]
	assert.Equal(t, 3139477, pm.PlayerID)
	assert.Equal(t, 12, pm.TeamID)
	assert.Equal(t, "QB", pm.Position.Abbreviation)
	assert.Equal(t, "https://a.espncdn.com/i/headshots/nfl/players/full/3139477.png", pm.HeadshotURL)
	assert.Equal(t, 8, pm.Experience)
	assert.Equal(t, "Texas Tech", pm.College)
	assert.Equal(t, "Active", pm.Status)
	assert.Equal(t, "225 lbs", pm.Weight)

	tm := players[1]
	assert.Equal(t, "https://example.com/h.png", tm.HeadshotURL)
	assert.Equal(t, 4, tm.Experience)
	assert.Equal(t, "Washington", tm.College)
}

func TestNormalizeRosterFlat(t *testing.T) {
	doc := map[string]interface{}{
		"athletes": []interface{}{
			map[string]interface{}{"id": "1", "displayName": "A"},
			map[string]interface{}{"id": "2", "displayName": "B", "experience": map[string]interface{}{"years": -3.0}},
		},
	}
	players, dropped := NormalizeRoster(doc, 7, fixedNow)
	require.Len(t, players, 2)
	assert.Zero(t, dropped)
	assert.Equal(t, 0, players[1].Experience)
}

func TestNormalizeScoreboard(t *testing.T) {
	games, dropped := NormalizeScoreboard(loadFixture(t, "scoreboard.json"), fixedNow)
	require.Len(t, games, 2)
	assert.Equal(t, 2, dropped)

	g := games[0]
	assert.Equal(t, "401772510", g.GameID)
	assert.Equal(t, 10, g.Week)
	assert.Equal(t, 2025, g.Season)
	assert.Equal(t, 2, g.SeasonType)
	assert.Equal(t, "2025/2026", g.SeasonLabel)
	assert.Equal(t, provider.SchemaVersion, g.SchemaVersion)

	assert.Equal(t, 7, g.HomeTeam.TeamID)
	assert.Equal(t, "DEN", g.HomeTeam.Abbreviation)
	assert.Equal(t, 24, g.HomeTeam.Score)
	assert.Equal(t, []int{7, 3, 7, 7}, g.HomeTeam.Linescores)
	assert.True(t, g.HomeTeam.Winner)
	assert.Equal(t, "8-2", g.HomeTeam.Record)

	assert.Equal(t, 12, g.AwayTeam.TeamID, "competitor id falls back to the top-level id")
	assert.Equal(t, 0, g.AwayTeam.Score, "malformed score reads as zero")
	assert.Equal(t, []int{3, 0}, g.AwayTeam.Linescores)
	assert.Equal(t, "4-1", g.AwayTeam.Record)
	assert.Equal(t, "https://a.espncdn.com/i/teamlogos/nfl/500/kc.png", g.AwayTeam.Logo)

	assert.True(t, g.Status.Completed)
	assert.Equal(t, "post", g.Status.State)
	assert.Equal(t, 4, g.Status.Period)
	assert.Equal(t, []string{"NBC", "Peacock"}, g.Broadcasts)
	assert.Equal(t, "NBC", g.Broadcast)
	assert.Equal(t, 76125, g.Attendance)
	assert.Equal(t, "Denver", g.Venue.City)

	require.Len(t, g.StatLeaders["passingyards"], 1)
	leader := g.StatLeaders["passingyards"][0]
	assert.Equal(t, 3139477, leader.PlayerID)
	assert.Equal(t, 12, leader.TeamID)
	assert.Equal(t, "https://example.com/pm.png", leader.Headshot)
	assert.Equal(t, 241.0, leader.Value)
	rush := g.StatLeaders["rushingyards"][0]
	assert.Equal(t, 7, rush.TeamID)
	assert.Equal(t, "https://example.com/rj.png", rush.Headshot)

	live := games[1]
	assert.False(t, live.Status.Completed, "status falls back to the competition")
	assert.Equal(t, "in", live.Status.State)
	assert.Equal(t, "7:12", live.Status.Clock)
	assert.Equal(t, "SF", live.HomeTeam.Abbreviation)
	assert.Equal(t, "ARI", live.AwayTeam.Abbreviation)
	assert.Empty(t, live.Broadcasts)
	assert.Equal(t, "FOX", live.Broadcast)
	assert.NotNil(t, live.StatLeaders)
	assert.NotNil(t, live.HomeTeam.Linescores)
}

func TestNormalizeScoreboardEmpty(t *testing.T) {
	games, dropped := NormalizeScoreboard(map[string]interface{}{"events": []interface{}{}}, fixedNow)
	assert.NotNil(t, games)
	assert.Empty(t, games)
	assert.Zero(t, dropped)

	games, _ = NormalizeScoreboard(map[string]interface{}{}, fixedNow)
	assert.Empty(t, games)
}

func TestNormalizeSchedule(t *testing.T) {
	sched, dropped := NormalizeSchedule(loadFixture(t, "schedule.json"), 2025, 1, fixedNow)
	require.NotNil(t, sched)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 2025, sched.Year)
	assert.Equal(t, 1, sched.Week)

	require.Len(t, sched.Calendar, 1)
	require.Len(t, sched.Calendar[0].Entries, 2)
	assert.Equal(t, "Sep 4-10", sched.Calendar[0].Entries[0].Detail)

	require.Len(t, sched.Games, 2)
	first := sched.Games[0]
	assert.Equal(t, "401772510", first.GameID, "days are walked in date order")
	assert.Equal(t, 21, first.HomeTeam.TeamID)
	assert.Equal(t, []string{"NBC"}, first.Broadcasts)
	assert.Equal(t, 1, first.Week, "games without a week number take the requested week")
	assert.Equal(t, 2, first.SeasonType, "season.type backs up seasonType.type")

	second := sched.Games[1]
	assert.Equal(t, 1, second.HomeTeam.TeamID)
	assert.Equal(t, "ATL", second.HomeTeam.Abbreviation)
	assert.Equal(t, "https://example.com/atl.png", second.HomeTeam.Logo)
	assert.Equal(t, "TB", second.AwayTeam.Abbreviation)
	assert.Equal(t, "0-0", second.AwayTeam.Record)
	assert.Equal(t, []string{"FOX"}, second.Broadcasts)
	assert.Equal(t, "Scheduled", second.Status)
	assert.Equal(t, "Atlanta", second.Venue.City)
	assert.Equal(t, 1, second.Week)
	assert.Equal(t, 2, second.SeasonType)
}

func TestNormalizeScheduleWithoutContent(t *testing.T) {
	sched, dropped := NormalizeSchedule(map[string]interface{}{"other": 1.0}, 2025, 1, fixedNow)
	assert.Nil(t, sched)
	assert.Zero(t, dropped)
}

func TestNormalizeTeamStats(t *testing.T) {
	stats := NormalizeTeamStats(loadFixture(t, "team_stats.json"), 12, 2025, 2, fixedNow)
	require.NotNil(t, stats)
	require.NotNil(t, stats.Season)
	require.NotNil(t, stats.List)

	season := stats.Season
	assert.Equal(t, 12, season.TeamID)
	assert.Equal(t, 2025, season.Season)
	assert.Equal(t, 2, season.SeasonType)

	net := season.AllStats["passing"]["net_passing_yards"]
	assert.Equal(t, 2756.0, net.Value)
	require.NotNil(t, net.Rank)
	assert.Equal(t, 14, *net.Rank)
	require.NotNil(t, net.PerGameValue)
	assert.InDelta(t, 229.7, *net.PerGameValue, 1e-9)
	assert.Contains(t, season.AllStats["passing"], "qb_rating")

	off := season.KeyStats.Offensive
	require.NotNil(t, off["passing_yards"])
	assert.Equal(t, net, *off["passing_yards"], "key stats keep the whole stat object")
	assert.Equal(t, "2,756", off["passing_yards"].DisplayValue)
	require.NotNil(t, off["passing_yards"].Rank)
	assert.Equal(t, 14, *off["passing_yards"].Rank)
	require.NotNil(t, off["passing_yards"].PerGameValue)
	require.NotNil(t, off["qb_rating"])
	assert.Equal(t, 97.3, off["qb_rating"].Value)
	assert.Contains(t, off, "rushing_tds")
	assert.Nil(t, off["rushing_tds"])

	def := season.KeyStats.Defensive
	require.NotNil(t, def["interceptions"])
	assert.Equal(t, 9.0, def["interceptions"].Value, "defensive_interceptions wins over defensive")

	st := season.KeyStats.SpecialTeams
	require.NotNil(t, st["punt_avg"])
	assert.Equal(t, 44.1, st["punt_avg"].Value)
	assert.Nil(t, st["extra_point_pct"])

	list := stats.List
	assert.Len(t, list.Stats, 11)
	entry, ok := list.Find("passing", "net_passing_yards")
	require.True(t, ok)
	assert.Equal(t, "Net Passing Yards", entry.DisplayName)
	assert.Equal(t, "2,756", entry.DisplayValue)
	assert.Equal(t, "14th", entry.RankDisplayValue)
	_, ok = list.Find("defensive_interceptions", "interceptions")
	assert.True(t, ok)
}

func TestNormalizeTeamStatsWithoutCategories(t *testing.T) {
	assert.Nil(t, NormalizeTeamStats(map[string]interface{}{"splits": map[string]interface{}{}}, 1, 2025, 2, fixedNow))

	empty := NormalizeTeamStats(map[string]interface{}{
		"splits": map[string]interface{}{"categories": []interface{}{}},
	}, 1, 2025, 2, fixedNow)
	require.NotNil(t, empty)
	assert.Empty(t, empty.List.Stats)
	assert.Nil(t, empty.Season.KeyStats.Offensive["passing_yards"])
}
