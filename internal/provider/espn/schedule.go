package espn

import (
	"sort"
	"time"

	"github.com/gamecenter/nfl-data/internal/provider"
)

// NormalizeSchedule maps the schedule payload for one (year, week). The
// payload must carry a "content" object; games inside it that lack an id or
// either competitor are dropped and counted.
func NormalizeSchedule(doc map[string]interface{}, year, week int, now time.Time) (*provider.Schedule, int) {
	content := provider.Map(doc, "content")
	if content == nil {
		return nil, 0
	}

	sched := &provider.Schedule{
		Year:      year,
		Week:      week,
		Calendar:  []provider.CalendarSection{},
		Games:     []provider.ScheduledGame{},
		UpdatedAt: now,
	}

	for _, section := range provider.Maps(content, "calendar") {
		cs := provider.CalendarSection{
			Label:     provider.String(section, "label"),
			Value:     provider.String(section, "value"),
			StartDate: provider.String(section, "startDate"),
			EndDate:   provider.String(section, "endDate"),
			Entries:   []provider.CalendarEntry{},
		}
		for _, e := range provider.Maps(section, "entries") {
			cs.Entries = append(cs.Entries, provider.CalendarEntry{
				Label:          provider.String(e, "label"),
				AlternateLabel: provider.String(e, "alternateLabel"),
				Detail:         provider.String(e, "detail"),
				Value:          provider.String(e, "value"),
				StartDate:      provider.String(e, "startDate"),
				EndDate:        provider.String(e, "endDate"),
			})
		}
		sched.Calendar = append(sched.Calendar, cs)
	}

	days := provider.Map(content, "schedule")
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	dropped := 0
	for _, day := range keys {
		for _, raw := range provider.Maps(days, day, "games") {
			g, ok := normalizeScheduledGame(raw)
			if !ok {
				dropped++
				continue
			}
			if g.Week == 0 {
				g.Week = week
			}
			sched.Games = append(sched.Games, g)
		}
	}
	return sched, dropped
}

func normalizeScheduledGame(raw map[string]interface{}) (provider.ScheduledGame, bool) {
	id := provider.String(raw, "id")
	comp := provider.Map(raw, "competitions", "0")
	if id == "" || comp == nil {
		return provider.ScheduledGame{}, false
	}
	home, away := splitHomeAway(provider.Maps(comp, "competitors"))
	if home == nil || away == nil {
		return provider.ScheduledGame{}, false
	}

	seasonType := provider.Count(raw, "seasonType", "type")
	if seasonType == 0 {
		seasonType = provider.Count(raw, "season", "type")
	}

	return provider.ScheduledGame{
		GameID:     id,
		Date:       provider.String(raw, "date"),
		Name:       provider.String(raw, "name"),
		ShortName:  provider.String(raw, "shortName"),
		Week:       provider.Count(raw, "week", "number"),
		SeasonType: seasonType,
		HomeTeam:   scheduleTeam(home),
		AwayTeam:   scheduleTeam(away),
		Venue: provider.Venue{
			Name:     provider.String(comp, "venue", "fullName"),
			City:     provider.String(comp, "venue", "address", "city"),
			State:    provider.String(comp, "venue", "address", "state"),
			Capacity: provider.Count(comp, "venue", "capacity"),
		},
		Broadcasts: broadcastNames(provider.Maps(comp, "broadcasts")),
		Status:     provider.FirstString(raw, []string{"status", "type", "description"}, []string{"status", "type", "name"}),
	}, true
}

// scheduleTeam reads competitor.team.X, falling back to competitor.X.
func scheduleTeam(c map[string]interface{}) provider.ScheduleTeam {
	teamID := provider.Int(c, "team", "id")
	if teamID == 0 {
		teamID = provider.Int(c, "id")
	}
	record := provider.String(c, "record")
	if record == "" {
		record = recordSummary(provider.Maps(c, "records"))
	}
	return provider.ScheduleTeam{
		TeamID:       teamID,
		Abbreviation: provider.FirstString(c, []string{"team", "abbreviation"}, []string{"abbreviation"}),
		DisplayName:  provider.FirstString(c, []string{"team", "displayName"}, []string{"displayName"}),
		Logo:         provider.FirstString(c, []string{"team", "logo"}, []string{"logo"}),
		Record:       record,
	}
}
