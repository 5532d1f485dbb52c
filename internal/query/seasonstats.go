package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/nfl"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// StatDefinition is one rankable stat of the season stats catalog.
type StatDefinition struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	PreferLow   bool   `json:"prefer_low"`
}

// DefaultStat is ranked when a request names none.
const DefaultStat = "OFFPointsPerGame"

var statCatalog = []StatDefinition{
	{"OFFPointsPerGame", "Points Per Game", "scoring", "total_points_per_game", false},
	{"OFFTotalPoints", "Total Points", "scoring", "total_points", false},
	{"OFFNetPassingYards", "Net Passing Yards", "passing", "net_passing_yards", false},
	{"OFFPassingYardsPerGame", "Passing Yards Per Game", "passing", "net_passing_yards_per_game", false},
	{"OFFPassingTouchdowns", "Passing Touchdowns", "passing", "passing_touchdowns", false},
	{"OFFQBRating", "QB Rating", "passing", "qb_rating", false},
	{"OFFInterceptions", "Interceptions Thrown", "passing", "interceptions", true},
	{"OFFSacksTaken", "Sacks Taken", "passing", "sacks", true},
	{"OFFRushingYards", "Rushing Yards", "rushing", "rushing_yards", false},
	{"OFFRushingYardsPerGame", "Rushing Yards Per Game", "rushing", "rushing_yards_per_game", false},
	{"OFFRushingTouchdowns", "Rushing Touchdowns", "rushing", "rushing_touchdowns", false},
	{"OFFThirdDownPct", "Third Down Conversion %", "miscellaneous", "third_down_conv_pct", false},
	{"OFFGiveaways", "Giveaways", "miscellaneous", "total_giveaways", true},
	{"DEFSacks", "Sacks", "defensive", "sacks", false},
	{"DEFTotalTackles", "Total Tackles", "defensive", "total_tackles", false},
	{"DEFInterceptions", "Interceptions", "defensive_interceptions", "interceptions", false},
	{"DEFTakeaways", "Takeaways", "miscellaneous", "total_takeaways", false},
	{"DEFYardsAllowed", "Yards Allowed", "defensive", "yards_allowed", true},
	{"DEFPointsAllowed", "Points Allowed", "defensive", "points_allowed", true},
	{"STFieldGoalPct", "Field Goal %", "kicking", "field_goal_pct", false},
	{"STExtraPointPct", "Extra Point %", "kicking", "extra_point_pct", false},
	{"STGrossPuntAverage", "Gross Punt Average", "punting", "gross_avg_punt_yards", false},
	{"STKickReturnAverage", "Kick Return Average", "returning", "yards_per_kick_return", false},
	{"MISCPenaltyYards", "Penalty Yards", "miscellaneous", "total_penalty_yards", true},
}

// StatCatalog lists every rankable stat.
func StatCatalog() []StatDefinition {
	out := make([]StatDefinition, len(statCatalog))
	copy(out, statCatalog)
	return out
}

// LookupStat finds a catalog entry by key.
func LookupStat(key string) (StatDefinition, bool) {
	for _, d := range statCatalog {
		if d.Key == key {
			return d, true
		}
	}
	return StatDefinition{}, false
}

// RankedTeam is one row of a season stat ranking.
type RankedTeam struct {
	Rank         int     `json:"rank"`
	TeamID       int     `json:"team_id"`
	DisplayName  string  `json:"display_name"`
	Logo         string  `json:"logo"`
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

// SeasonStatRanking ranks every team with stored statistics on one stat.
type SeasonStatRanking struct {
	Stat                 string       `json:"stat"`
	StatDisplayName      string       `json:"stat_display_name"`
	Season               int          `json:"season"`
	LeagueAverage        float64      `json:"league_average"`
	LeagueAverageDisplay string       `json:"league_average_display"`
	PreferLow            bool         `json:"prefer_low"`
	Teams                []RankedTeam `json:"teams"`
}

// SeasonStats ranks all teams on one catalogued stat for a season. Best
// values rank first; equal values share a rank.
func (s *Service) SeasonStats(ctx context.Context, statKey string, season int) (*SeasonStatRanking, error) {
	def, ok := LookupStat(statKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStat, statKey)
	}

	lists, err := docstore.FindInto[provider.TeamStatList](ctx, s.store, config.TeamStatListsCollection, docstore.Where(
		docstore.Eq("season", strconv.Itoa(season)),
		docstore.Eq("season_type", strconv.Itoa(config.SeasonTypeRegular)),
	))
	if err != nil {
		return nil, fmt.Errorf("find stat lists for %d: %w", season, err)
	}

	teams, err := s.Teams(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]provider.Team, len(teams))
	for _, t := range teams {
		byID[t.TeamID] = t
	}

	ranking := &SeasonStatRanking{
		Stat:            def.Key,
		StatDisplayName: def.DisplayName,
		Season:          season,
		PreferLow:       def.PreferLow,
		Teams:           []RankedTeam{},
	}

	sum := 0.0
	for i := range lists {
		entry, ok := lists[i].Find(def.Category, def.Name)
		if !ok {
			continue
		}
		row := RankedTeam{
			TeamID:       lists[i].TeamID,
			Value:        entry.Value,
			DisplayValue: entry.DisplayValue,
		}
		if row.DisplayValue == "" {
			row.DisplayValue = strconv.FormatFloat(entry.Value, 'f', -1, 64)
		}
		if t, ok := byID[row.TeamID]; ok {
			row.DisplayName = t.DisplayName
			if t.LogoURL != nil {
				row.Logo = *t.LogoURL
			}
		} else if f, ok := nfl.ByID(row.TeamID); ok {
			row.DisplayName = f.DisplayName
		}
		sum += entry.Value
		ranking.Teams = append(ranking.Teams, row)
	}

	sort.SliceStable(ranking.Teams, func(i, j int) bool {
		a, b := ranking.Teams[i].Value, ranking.Teams[j].Value
		if a == b {
			return ranking.Teams[i].DisplayName < ranking.Teams[j].DisplayName
		}
		if def.PreferLow {
			return a < b
		}
		return a > b
	})
	for i := range ranking.Teams {
		if i > 0 && ranking.Teams[i].Value == ranking.Teams[i-1].Value {
			ranking.Teams[i].Rank = ranking.Teams[i-1].Rank
		} else {
			ranking.Teams[i].Rank = i + 1
		}
	}

	if n := len(ranking.Teams); n > 0 {
		ranking.LeagueAverage = sum / float64(n)
	}
	ranking.LeagueAverageDisplay = strconv.FormatFloat(ranking.LeagueAverage, 'f', 1, 64)
	return ranking, nil
}
