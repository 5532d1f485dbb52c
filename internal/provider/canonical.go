// Package provider defines the canonical NFL records that upstream payloads
// are normalized into, plus the path helpers the normalizers are built on.
// These structs are the contract between the ESPN handler and the loader:
// the handler outputs them, the loader writes them to the document store.
package provider

import (
	"fmt"
	"time"
)

// SchemaVersion is stamped on every game document. Version 2 stores week as
// an integer alongside the "YYYY/YYYY+1" season label.
const SchemaVersion = 2

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// Team is one franchise profile, keyed by TeamID.
type Team struct {
	TeamID           int       `json:"team_id"`
	UID              string    `json:"uid"`
	Slug             string    `json:"slug"`
	Abbreviation     string    `json:"abbreviation"`
	DisplayName      string    `json:"display_name"`
	ShortDisplayName string    `json:"short_display_name"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	Color            string    `json:"color"`
	AlternateColor   string    `json:"alternate_color"`
	LogoURL          *string   `json:"logo_url"`
	Venue            Venue     `json:"venue"`
	Links            TeamLinks `json:"links"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Venue is a stadium. Capacity is 0 when upstream omits it.
type Venue struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	State    string `json:"state"`
	Capacity int    `json:"capacity"`
}

// TeamLinks holds the selected clubhouse/roster/stats URLs.
type TeamLinks struct {
	Clubhouse *string `json:"clubhouse"`
	Roster    *string `json:"roster"`
	Stats     *string `json:"stats"`
}

// TeamDetails is the per-season record snapshot for one team.
type TeamDetails struct {
	TeamID          int        `json:"team_id"`
	DisplayName     string     `json:"display_name"`
	Abbreviation    string     `json:"abbreviation"`
	RecordSummary   string     `json:"record_summary"`
	StandingSummary string     `json:"standing_summary"`
	Record          TeamRecord `json:"record"`
	NextGame        *NextGame  `json:"next_game"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type TeamRecord struct {
	Overall OverallRecord `json:"overall"`
	Home    SplitRecord   `json:"home"`
	Road    SplitRecord   `json:"road"`
}

type OverallRecord struct {
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Ties        int     `json:"ties"`
	WinPercent  float64 `json:"win_percent"`
	GamesPlayed int     `json:"games_played"`
}

type SplitRecord struct {
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	Summary string `json:"summary"`
}

type NextGame struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Date      string `json:"date"`
}

// --------------------------------------------------------------------------
// Players
// --------------------------------------------------------------------------

// Player is one roster entry, keyed by PlayerID. TeamID is not enforced
// against the teams collection.
type Player struct {
	PlayerID    int       `json:"player_id"`
	UID         string    `json:"uid"`
	TeamID      int       `json:"team_id"`
	Jersey      string    `json:"jersey"`
	DisplayName string    `json:"display_name"`
	FullName    string    `json:"full_name"`
	ShortName   string    `json:"short_name"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Position    Position  `json:"position"`
	HeadshotURL string    `json:"headshot_url"`
	Age         int       `json:"age"`
	Height      string    `json:"height"`
	Weight      string    `json:"weight"`
	Experience  int       `json:"experience"`
	College     string    `json:"college"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Position struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"display_name"`
}

// --------------------------------------------------------------------------
// Games
// --------------------------------------------------------------------------

// Game is one scoreboard event, keyed by GameID.
//
// Score and Linescores are final only when Status.Completed is true.
type Game struct {
	GameID        string                  `json:"game_id"`
	UID           string                  `json:"uid"`
	Date          string                  `json:"date"`
	Name          string                  `json:"name"`
	ShortName     string                  `json:"short_name"`
	Week          int                     `json:"week"`
	Season        int                     `json:"season"`
	SeasonType    int                     `json:"season_type"`
	SeasonLabel   string                  `json:"season_label"`
	HomeTeam      Competitor              `json:"home_team"`
	AwayTeam      Competitor              `json:"away_team"`
	Status        GameStatus              `json:"status"`
	Venue         Venue                   `json:"venue"`
	Broadcasts    []string                `json:"broadcasts"`
	Broadcast     string                  `json:"broadcast"`
	StatLeaders   map[string][]StatLeader `json:"stat_leaders"`
	Attendance    int                     `json:"attendance"`
	SchemaVersion int                     `json:"schema_version"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// Competitor is one side of a game. Home and away share this shape.
type Competitor struct {
	TeamID       int    `json:"team_id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"display_name"`
	Logo         string `json:"logo"`
	Score        int    `json:"score"`
	Linescores   []int  `json:"linescores"`
	Winner       bool   `json:"winner"`
	Record       string `json:"record"`
}

type GameStatus struct {
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"short_detail"`
	State       string `json:"state"`
	Period      int    `json:"period"`
	Clock       string `json:"clock"`
}

// StatLeader is one leader entry within a category.
type StatLeader struct {
	PlayerID     int     `json:"player_id"`
	Name         string  `json:"name"`
	TeamID       int     `json:"team_id"`
	Headshot     string  `json:"headshot"`
	DisplayValue string  `json:"display_value"`
	Value        float64 `json:"value"`
}

// --------------------------------------------------------------------------
// Team statistics
// --------------------------------------------------------------------------

// StatValue is one stat inside a category of TeamSeasonStats.AllStats.
type StatValue struct {
	Value               float64  `json:"value"`
	DisplayValue        string   `json:"display_value"`
	Rank                *int     `json:"rank,omitempty"`
	PerGameValue        *float64 `json:"per_game_value,omitempty"`
	PerGameDisplayValue string   `json:"per_game_display_value,omitempty"`
}

// KeyStats is the curated projection of AllStats. Each entry is a copy of
// the full stat object, or nil when no source stat was present.
type KeyStats struct {
	Offensive    map[string]*StatValue `json:"offensive"`
	Defensive    map[string]*StatValue `json:"defensive"`
	SpecialTeams map[string]*StatValue `json:"special_teams"`
}

// TeamSeasonStats is keyed by (TeamID, Season, SeasonType).
type TeamSeasonStats struct {
	TeamID     int                             `json:"team_id"`
	Season     int                             `json:"season"`
	SeasonType int                             `json:"season_type"`
	AllStats   map[string]map[string]StatValue `json:"all_stats"`
	KeyStats   KeyStats                        `json:"key_stats"`
	UpdatedAt  time.Time                       `json:"updated_at"`
}

// StatEntry is one row of the flat stat list.
type StatEntry struct {
	Category            string   `json:"category"`
	Name                string   `json:"name"`
	DisplayName         string   `json:"display_name"`
	ShortDisplayName    string   `json:"short_display_name"`
	Description         string   `json:"description"`
	Abbreviation        string   `json:"abbreviation"`
	Value               float64  `json:"value"`
	DisplayValue        string   `json:"display_value"`
	PerGameValue        *float64 `json:"per_game_value,omitempty"`
	PerGameDisplayValue string   `json:"per_game_display_value,omitempty"`
	Rank                *int     `json:"rank,omitempty"`
	RankDisplayValue    string   `json:"rank_display_value,omitempty"`
}

// TeamStatList is the flat-list variant of team statistics, keyed like
// TeamSeasonStats. Head-to-head and season rankings read this shape.
type TeamStatList struct {
	TeamID     int         `json:"team_id"`
	Season     int         `json:"season"`
	SeasonType int         `json:"season_type"`
	Stats      []StatEntry `json:"stats"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Find returns the first entry matching category and normalized name.
func (l *TeamStatList) Find(category, name string) (StatEntry, bool) {
	for _, s := range l.Stats {
		if s.Category == category && s.Name == name {
			return s, true
		}
	}
	return StatEntry{}, false
}

// TeamStats bundles both statistics shapes produced by one upstream fetch.
type TeamStats struct {
	Season *TeamSeasonStats
	List   *TeamStatList
}

// --------------------------------------------------------------------------
// Schedules
// --------------------------------------------------------------------------

// Schedule is one (Year, Week) schedule document.
type Schedule struct {
	Year      int               `json:"year"`
	Week      int               `json:"week"`
	Calendar  []CalendarSection `json:"calendar"`
	Games     []ScheduledGame   `json:"games"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type CalendarSection struct {
	Label     string          `json:"label"`
	Value     string          `json:"value"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Entries   []CalendarEntry `json:"entries"`
}

type CalendarEntry struct {
	Label          string `json:"label"`
	AlternateLabel string `json:"alternate_label"`
	Detail         string `json:"detail"`
	Value          string `json:"value"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
}

// ScheduledGame is the pre-kickoff game shape: no scores or linescores.
type ScheduledGame struct {
	GameID     string       `json:"game_id"`
	Date       string       `json:"date"`
	Name       string       `json:"name"`
	ShortName  string       `json:"short_name"`
	Week       int          `json:"week"`
	SeasonType int          `json:"season_type"`
	HomeTeam   ScheduleTeam `json:"home_team"`
	AwayTeam   ScheduleTeam `json:"away_team"`
	Venue      Venue        `json:"venue"`
	Broadcasts []string     `json:"broadcasts"`
	Status     string       `json:"status"`
}

type ScheduleTeam struct {
	TeamID       int    `json:"team_id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"display_name"`
	Logo         string `json:"logo"`
	Record       string `json:"record"`
}

// --------------------------------------------------------------------------
// Fetch results
// --------------------------------------------------------------------------

// Batch is the outcome of one list fetch. Fetched is false when the request
// itself failed; Dropped counts payload entries that lacked a required anchor
// field and produced no record.
type Batch[T any] struct {
	Items   []T
	Dropped int
	Fetched bool
}

// --------------------------------------------------------------------------
// Natural keys
// --------------------------------------------------------------------------

// TeamKey is the document key for teams, team details and rosters.
func TeamKey(teamID int) string { return fmt.Sprintf("%d", teamID) }

// PlayerKey is the document key for players.
func PlayerKey(playerID int) string { return fmt.Sprintf("%d", playerID) }

// TeamStatsKey is the composite key "team:season:seasonType".
func TeamStatsKey(teamID, season, seasonType int) string {
	return fmt.Sprintf("%d:%d:%d", teamID, season, seasonType)
}

// ScheduleKey is the composite key "year:week".
func ScheduleKey(year, week int) string {
	return fmt.Sprintf("%d:%d", year, week)
}
