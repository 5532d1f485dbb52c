package nfl

import (
	_ "embed"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/bytedance/sonic"
)

//go:embed weeks.json
var weeksJSON []byte

// Week is one calendar week of a season as published upstream.
type Week struct {
	Year       int    `json:"year"`
	SeasonType int    `json:"season_type"`
	Week       int    `json:"week"`
	Label      string `json:"label"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// upstream calendar timestamps carry minutes and a literal Z
const calendarLayout = "2006-01-02T15:04Z"

// Start parses StartDate.
func (w Week) Start() (time.Time, error) { return time.Parse(calendarLayout, w.StartDate) }

// End parses EndDate.
func (w Week) End() (time.Time, error) { return time.Parse(calendarLayout, w.EndDate) }

// Dates returns the scoreboard dates covered by the week.
func (w Week) Dates() ([]string, error) {
	start, err := w.Start()
	if err != nil {
		return nil, fmt.Errorf("week %d start: %w", w.Week, err)
	}
	end, err := w.End()
	if err != nil {
		return nil, fmt.Errorf("week %d end: %w", w.Week, err)
	}
	return Dates(start, end), nil
}

type weekKey struct{ year, seasonType, week int }

var (
	calendar   []Week
	weekLookup map[weekKey]Week
	eastern    *time.Location
)

func init() {
	if err := sonic.Unmarshal(weeksJSON, &calendar); err != nil {
		panic(fmt.Sprintf("nfl: invalid embedded weeks.json: %v", err))
	}
	weekLookup = make(map[weekKey]Week, len(calendar))
	for _, w := range calendar {
		weekLookup[weekKey{w.Year, w.SeasonType, w.Week}] = w
	}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	eastern = loc
}

// LookupWeek resolves a week of a season. Unknown combinations return false.
func LookupWeek(year, seasonType, week int) (Week, bool) {
	w, ok := weekLookup[weekKey{year, seasonType, week}]
	return w, ok
}

// Weeks returns the calendar for one season and season type, in week order.
func Weeks(year, seasonType int) []Week {
	var out []Week
	for _, w := range calendar {
		if w.Year == year && w.SeasonType == seasonType {
			out = append(out, w)
		}
	}
	return out
}

// Dates enumerates YYYYMMDD strings from start to end inclusive, one per
// calendar day in US Eastern time, in ascending order. The step keeps local
// wall-clock time so a week spanning a DST change still yields seven days.
func Dates(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	cur := start.In(eastern)
	last := end.In(eastern)

	var dates []string
	for !cur.After(last) {
		dates = append(dates, cur.Format("20060102"))
		cur = cur.AddDate(0, 0, 1)
	}
	return dates
}

// CurrentWeek returns the calendar week containing t, if any.
func CurrentWeek(t time.Time) (Week, bool) {
	for _, w := range calendar {
		start, err1 := w.Start()
		end, err2 := w.End()
		if err1 != nil || err2 != nil {
			continue
		}
		if !t.Before(start) && !t.After(end) {
			return w, true
		}
	}
	return Week{}, false
}

// ScoreboardDate formats t as the YYYYMMDD date it falls on in US Eastern
// time.
func ScoreboardDate(t time.Time) string {
	return t.In(eastern).Format("20060102")
}

// ParseScoreboardDate parses a YYYYMMDD date as midnight US Eastern time.
func ParseScoreboardDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("20060102", s, eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYYMMDD: %w", s, err)
	}
	return t, nil
}

// InEastern converts t to US Eastern time, where game days are reckoned.
func InEastern(t time.Time) time.Time {
	return t.In(eastern)
}
