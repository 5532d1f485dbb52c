package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/nfl"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// WeekTeam is one side of a games-for-week row.
type WeekTeam struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
	Record       string `json:"record"`
}

// WeekGame is one row of the games-for-week view.
type WeekGame struct {
	GameID     string   `json:"gameId"`
	Date       string   `json:"date"`
	Kickoff    string   `json:"kickoff"`
	Status     string   `json:"status"`
	StatusText string   `json:"statusText"`
	HomeTeam   WeekTeam `json:"homeTeam"`
	AwayTeam   WeekTeam `json:"awayTeam"`
	HomeScore  int      `json:"homeScore"`
	AwayScore  int      `json:"awayScore"`
}

// storedGame is the subset of a game document the views read. Week is left
// out so documents written with a string week still decode.
type storedGame struct {
	GameID   string              `json:"game_id"`
	Date     string              `json:"date"`
	HomeTeam provider.Competitor `json:"home_team"`
	AwayTeam provider.Competitor `json:"away_team"`
	Status   provider.GameStatus `json:"status"`
}

const displayDateLayout = "Monday, Jan 02, 2006"

// GamesForWeek returns the stored games of one week of a season type, in
// kickoff order. week matches whether it was stored as a number or as a
// string. Games stored without a season type count as regular season.
func (s *Service) GamesForWeek(ctx context.Context, week, seasonStart, seasonType int) ([]WeekGame, error) {
	typeCond := docstore.Eq("season_type", strconv.Itoa(seasonType))
	if seasonType == config.SeasonTypeRegular {
		typeCond = docstore.EqOrMissing("season_type", strconv.Itoa(seasonType))
	}
	games, err := docstore.FindInto[storedGame](ctx, s.store, config.GamesCollection, docstore.Where(
		docstore.Eq("week", strconv.Itoa(week)),
		docstore.Eq("season_label", config.SeasonLabel(seasonStart)),
		typeCond,
	))
	if err != nil {
		return nil, fmt.Errorf("find games for week %d: %w", week, err)
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].Date < games[j].Date })

	rows := make([]WeekGame, 0, len(games))
	for _, g := range games {
		rows = append(rows, WeekGame{
			GameID:     g.GameID,
			Date:       displayDate(g.Date),
			Kickoff:    g.Date,
			Status:     statusClass(g.Status),
			StatusText: statusText(g.Status),
			HomeTeam:   weekTeam(g.HomeTeam),
			AwayTeam:   weekTeam(g.AwayTeam),
			HomeScore:  g.HomeTeam.Score,
			AwayScore:  g.AwayTeam.Score,
		})
	}
	return rows, nil
}

func weekTeam(c provider.Competitor) WeekTeam {
	return WeekTeam{
		Name:         c.DisplayName,
		Abbreviation: c.Abbreviation,
		Logo:         c.Logo,
		Record:       c.Record,
	}
}

// displayDate renders an upstream timestamp as an Eastern calendar day.
// Unparseable input is returned as is.
func displayDate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02T15:04Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return nfl.InEastern(t).Format(displayDateLayout)
		}
	}
	return raw
}

// statusClass collapses a game status into final, in or scheduled.
func statusClass(st provider.GameStatus) string {
	switch {
	case st.Completed:
		return "final"
	case st.State == "in":
		return "in"
	default:
		return "scheduled"
	}
}

func statusText(st provider.GameStatus) string {
	if st.Description != "" {
		return st.Description
	}
	return "Scheduled"
}

// TeamIDFromAbbreviation resolves a team abbreviation by scanning stored
// games, home or away, case-insensitively; the first match wins. A team no
// stored game names is not found unless the franchise fallback is enabled.
func (s *Service) TeamIDFromAbbreviation(ctx context.Context, abbr string) (int, error) {
	abbr = strings.TrimSpace(abbr)
	if abbr == "" {
		return 0, fmt.Errorf("%w: empty abbreviation", ErrTeamNotFound)
	}

	q := docstore.Where(docstore.EqFold(abbr, "home_team.abbreviation", "away_team.abbreviation"))
	q.Limit = 1
	games, err := docstore.FindInto[storedGame](ctx, s.store, config.GamesCollection, q)
	if err != nil {
		return 0, fmt.Errorf("find games for %s: %w", abbr, err)
	}
	if len(games) > 0 {
		g := games[0]
		if strings.EqualFold(g.HomeTeam.Abbreviation, abbr) && g.HomeTeam.TeamID > 0 {
			return g.HomeTeam.TeamID, nil
		}
		if strings.EqualFold(g.AwayTeam.Abbreviation, abbr) && g.AwayTeam.TeamID > 0 {
			return g.AwayTeam.TeamID, nil
		}
	}

	if s.franchiseFallback {
		if f, ok := nfl.ByAbbreviation(abbr); ok {
			return f.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrTeamNotFound, abbr)
}
