package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/nfl"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// Leader values of a comparison row. An empty leader means the values could
// not be compared.
const (
	LeaderAway = "away"
	LeaderHome = "home"
	LeaderTie  = "tie"
)

// statField is one projected stat of a head-to-head bucket.
type statField struct {
	Label     string
	Category  string
	Name      string
	PreferLow bool
}

var offenseFields = []statField{
	{"Points Per Game", "scoring", "total_points_per_game", false},
	{"Net Passing Yards", "passing", "net_passing_yards", false},
	{"Passing Touchdowns", "passing", "passing_touchdowns", false},
	{"Interceptions Thrown", "passing", "interceptions", true},
	{"Sacks Taken", "passing", "sacks", true},
	{"QB Rating", "passing", "qb_rating", false},
	{"Rushing Yards", "rushing", "rushing_yards", false},
	{"Rushing Touchdowns", "rushing", "rushing_touchdowns", false},
	{"Yards Per Rush", "rushing", "yards_per_rush_attempt", false},
	{"Third Down Conversion %", "miscellaneous", "third_down_conv_pct", false},
	{"Giveaways", "miscellaneous", "total_giveaways", true},
}

var defenseFields = []statField{
	{"Total Tackles", "defensive", "total_tackles", false},
	{"Sacks", "defensive", "sacks", false},
	{"Tackles For Loss", "defensive", "tackles_for_loss", false},
	{"Passes Defended", "defensive", "passes_defended", false},
	{"Interceptions", "defensive_interceptions", "interceptions", false},
	{"Takeaways", "miscellaneous", "total_takeaways", false},
	{"Yards Allowed", "defensive", "yards_allowed", true},
	{"Points Allowed", "defensive", "points_allowed", true},
	{"Penalty Yards", "miscellaneous", "total_penalty_yards", true},
}

var specialTeamsFields = []statField{
	{"Field Goal %", "kicking", "field_goal_pct", false},
	{"Extra Point %", "kicking", "extra_point_pct", false},
	{"Long Field Goal", "kicking", "long_field_goal_made", false},
	{"Gross Punt Average", "punting", "gross_avg_punt_yards", false},
	{"Kick Return Average", "returning", "yards_per_kick_return", false},
	{"Punt Return Average", "returning", "yards_per_punt_return", false},
}

// ComparisonRow is one stat compared between the two teams.
type ComparisonRow struct {
	Label     string `json:"label"`
	Category  string `json:"category"`
	Stat      string `json:"stat"`
	AwayValue string `json:"away_value"`
	HomeValue string `json:"home_value"`
	PreferLow bool   `json:"prefer_low"`
	Leader    string `json:"leader"`
}

// TeamSummary identifies one side of a comparison.
type TeamSummary struct {
	TeamID       int    `json:"team_id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"display_name"`
	Logo         string `json:"logo,omitempty"`
	StatsFound   bool   `json:"stats_found"`
}

// HeadToHead is the comparison view of two teams' season statistics.
type HeadToHead struct {
	Season       int             `json:"season"`
	Away         TeamSummary     `json:"away"`
	Home         TeamSummary     `json:"home"`
	Offense      []ComparisonRow `json:"offense"`
	Defense      []ComparisonRow `json:"defense"`
	SpecialTeams []ComparisonRow `json:"special_teams"`
}

// HeadToHead compares two teams' regular season stat lists. A team without
// stored statistics yields empty values and no leaders rather than an
// error; an abbreviation that resolves to no team is ErrTeamNotFound.
func (s *Service) HeadToHead(ctx context.Context, awayAbbr, homeAbbr string, season int) (*HeadToHead, error) {
	awayID, err := s.TeamIDFromAbbreviation(ctx, awayAbbr)
	if err != nil {
		return nil, err
	}
	homeID, err := s.TeamIDFromAbbreviation(ctx, homeAbbr)
	if err != nil {
		return nil, err
	}

	awayStats, err := s.TeamStatList(ctx, awayID, season, config.SeasonTypeRegular)
	if err != nil {
		return nil, err
	}
	homeStats, err := s.TeamStatList(ctx, homeID, season, config.SeasonTypeRegular)
	if err != nil {
		return nil, err
	}
	if awayStats == nil || homeStats == nil {
		s.logger.Warn("Head-to-head with missing stats", "season", season,
			"away", awayAbbr, "away_found", awayStats != nil,
			"home", homeAbbr, "home_found", homeStats != nil)
	}

	h := &HeadToHead{
		Season:       season,
		Away:         s.teamSummary(ctx, awayID, awayAbbr),
		Home:         s.teamSummary(ctx, homeID, homeAbbr),
		Offense:      compare(offenseFields, awayStats, homeStats),
		Defense:      compare(defenseFields, awayStats, homeStats),
		SpecialTeams: compare(specialTeamsFields, awayStats, homeStats),
	}
	h.Away.StatsFound = awayStats != nil
	h.Home.StatsFound = homeStats != nil
	return h, nil
}

// teamSummary prefers the stored team document and falls back to the
// static franchise table.
func (s *Service) teamSummary(ctx context.Context, teamID int, abbr string) TeamSummary {
	sum := TeamSummary{TeamID: teamID, Abbreviation: strings.ToUpper(strings.TrimSpace(abbr))}
	if f, ok := nfl.ByID(teamID); ok {
		sum.Abbreviation = f.Abbreviation
		sum.DisplayName = f.DisplayName
	}
	if team, err := s.Team(ctx, teamID); err == nil {
		sum.Abbreviation = team.Abbreviation
		sum.DisplayName = team.DisplayName
		if team.LogoURL != nil {
			sum.Logo = *team.LogoURL
		}
	}
	return sum
}

func compare(fields []statField, away, home *provider.TeamStatList) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(fields))
	for _, f := range fields {
		row := ComparisonRow{
			Label:     f.Label,
			Category:  f.Category,
			Stat:      f.Name,
			AwayValue: statDisplay(away, f),
			HomeValue: statDisplay(home, f),
			PreferLow: f.PreferLow,
		}
		row.Leader = Leader(row.AwayValue, row.HomeValue, f.PreferLow)
		rows = append(rows, row)
	}
	return rows
}

func statDisplay(list *provider.TeamStatList, f statField) string {
	if list == nil {
		return ""
	}
	entry, ok := list.Find(f.Category, f.Name)
	if !ok {
		return ""
	}
	if entry.DisplayValue != "" {
		return entry.DisplayValue
	}
	return strconv.FormatFloat(entry.Value, 'f', -1, 64)
}

// Leader compares two display values after stripping thousands separators
// and percent signs. Higher wins unless preferLow. Values that do not parse
// produce no leader.
func Leader(away, home string, preferLow bool) string {
	a, okA := parseDisplay(away)
	h, okH := parseDisplay(home)
	if !okA || !okH {
		return ""
	}
	switch {
	case a == h:
		return LeaderTie
	case (a > h) != preferLow:
		return LeaderAway
	default:
		return LeaderHome
	}
}

func parseDisplay(v string) (float64, bool) {
	v = strings.TrimSpace(strings.NewReplacer(",", "", "%", "").Replace(v))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
