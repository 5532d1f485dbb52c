// Package nfl holds the static league tables: the 32 franchises with their
// upstream ids, and the week calendar used to resolve a (season, week) pair
// into a scoreboard date range.
package nfl

import (
	"sort"
	"strings"
)

// Franchise is one entry in the static team table.
type Franchise struct {
	Name         string `json:"name"` // stable constant name, e.g. "NINERS"
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"display_name"`
}

var franchises = []Franchise{
	{"BEARS", 3, "CHI", "Chicago Bears"},
	{"BENGALS", 4, "CIN", "Cincinnati Bengals"},
	{"BILLS", 2, "BUF", "Buffalo Bills"},
	{"BRONCOS", 7, "DEN", "Denver Broncos"},
	{"BROWNS", 5, "CLE", "Cleveland Browns"},
	{"BUCCANEERS", 27, "TB", "Tampa Bay Buccaneers"},
	{"CARDINALS", 22, "ARI", "Arizona Cardinals"},
	{"CHARGERS", 24, "LAC", "Los Angeles Chargers"},
	{"CHIEFS", 12, "KC", "Kansas City Chiefs"},
	{"COLTS", 11, "IND", "Indianapolis Colts"},
	{"COMMANDERS", 28, "WSH", "Washington Commanders"},
	{"COWBOYS", 6, "DAL", "Dallas Cowboys"},
	{"DOLPHINS", 15, "MIA", "Miami Dolphins"},
	{"EAGLES", 21, "PHI", "Philadelphia Eagles"},
	{"FALCONS", 1, "ATL", "Atlanta Falcons"},
	{"NINERS", 25, "SF", "San Francisco 49ers"},
	{"GIANTS", 19, "NYG", "New York Giants"},
	{"JAGUARS", 30, "JAX", "Jacksonville Jaguars"},
	{"JETS", 20, "NYJ", "New York Jets"},
	{"LIONS", 8, "DET", "Detroit Lions"},
	{"PACKERS", 9, "GB", "Green Bay Packers"},
	{"PANTHERS", 29, "CAR", "Carolina Panthers"},
	{"PATRIOTS", 17, "NE", "New England Patriots"},
	{"RAIDERS", 13, "LV", "Las Vegas Raiders"},
	{"RAMS", 14, "LAR", "Los Angeles Rams"},
	{"RAVENS", 33, "BAL", "Baltimore Ravens"},
	{"SAINTS", 18, "NO", "New Orleans Saints"},
	{"SEAHAWKS", 26, "SEA", "Seattle Seahawks"},
	{"STEELERS", 23, "PIT", "Pittsburgh Steelers"},
	{"TEXANS", 34, "HOU", "Houston Texans"},
	{"TITANS", 10, "TEN", "Tennessee Titans"},
	{"VIKINGS", 16, "MIN", "Minnesota Vikings"},
}

var (
	byID     = make(map[int]Franchise, len(franchises))
	byAbbrev = make(map[string]Franchise, len(franchises))
)

func init() {
	for _, f := range franchises {
		byID[f.ID] = f
		byAbbrev[f.Abbreviation] = f
	}
}

// Franchises returns a copy of the table in declaration order.
func Franchises() []Franchise {
	out := make([]Franchise, len(franchises))
	copy(out, franchises)
	return out
}

// TeamIDs returns every franchise id in ascending order.
func TeamIDs() []int {
	ids := make([]int, 0, len(franchises))
	for _, f := range franchises {
		ids = append(ids, f.ID)
	}
	sort.Ints(ids)
	return ids
}

// ByID looks up a franchise by upstream team id.
func ByID(id int) (Franchise, bool) {
	f, ok := byID[id]
	return f, ok
}

// ByAbbreviation looks up a franchise case-insensitively.
func ByAbbreviation(abbr string) (Franchise, bool) {
	f, ok := byAbbrev[strings.ToUpper(strings.TrimSpace(abbr))]
	return f, ok
}
