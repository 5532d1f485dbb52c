package espn

import (
	"strings"
	"time"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// NormalizeScoreboard maps every event of a scoreboard payload. A payload
// with no events is an empty list, not an error.
func NormalizeScoreboard(doc map[string]interface{}, now time.Time) ([]provider.Game, int) {
	games := []provider.Game{}
	dropped := 0
	for _, event := range provider.Maps(doc, "events") {
		g, ok := NormalizeGame(event, now)
		if !ok {
			dropped++
			continue
		}
		games = append(games, g)
	}
	return games, dropped
}

// NormalizeGame maps one scoreboard event. The event needs an id, a first
// competition, and both a home and an away competitor.
func NormalizeGame(event map[string]interface{}, now time.Time) (provider.Game, bool) {
	id := provider.String(event, "id")
	comp := provider.Map(event, "competitions", "0")
	if id == "" || comp == nil {
		return provider.Game{}, false
	}

	home, away := splitHomeAway(provider.Maps(comp, "competitors"))
	if home == nil || away == nil {
		return provider.Game{}, false
	}

	status := provider.Map(event, "status")
	if status == nil {
		status = provider.Map(comp, "status")
	}

	season := provider.Int(event, "season", "year")
	label := ""
	if season > 0 {
		label = config.SeasonLabel(season)
	}

	broadcasts := broadcastNames(provider.Maps(comp, "broadcasts"))
	broadcast := ""
	if len(broadcasts) > 0 {
		broadcast = broadcasts[0]
	} else {
		broadcast = provider.String(comp, "broadcast")
	}

	return provider.Game{
		GameID:      id,
		UID:         provider.String(event, "uid"),
		Date:        provider.String(event, "date"),
		Name:        provider.String(event, "name"),
		ShortName:   provider.String(event, "shortName"),
		Week:        provider.Count(event, "week", "number"),
		Season:      season,
		SeasonType:  provider.Count(event, "season", "type"),
		SeasonLabel: label,
		HomeTeam:    normalizeCompetitor(home),
		AwayTeam:    normalizeCompetitor(away),
		Status: provider.GameStatus{
			Completed:   provider.Bool(status, "type", "completed"),
			Description: provider.String(status, "type", "description"),
			Detail:      provider.String(status, "type", "detail"),
			ShortDetail: provider.String(status, "type", "shortDetail"),
			State:       provider.String(status, "type", "state"),
			Period:      provider.Count(status, "period"),
			Clock:       provider.String(status, "displayClock"),
		},
		Venue: provider.Venue{
			Name:     provider.String(comp, "venue", "fullName"),
			City:     provider.String(comp, "venue", "address", "city"),
			State:    provider.String(comp, "venue", "address", "state"),
			Capacity: provider.Count(comp, "venue", "capacity"),
		},
		Broadcasts:    broadcasts,
		Broadcast:     broadcast,
		StatLeaders:   statLeaders(provider.Maps(comp, "leaders")),
		Attendance:    provider.Count(comp, "attendance"),
		SchemaVersion: provider.SchemaVersion,
		UpdatedAt:     now,
	}, true
}

// splitHomeAway partitions competitors by their homeAway discriminator. The
// first competitor on each side wins.
func splitHomeAway(competitors []map[string]interface{}) (home, away map[string]interface{}) {
	for _, c := range competitors {
		switch strings.ToLower(provider.String(c, "homeAway")) {
		case "home":
			if home == nil {
				home = c
			}
		case "away":
			if away == nil {
				away = c
			}
		}
	}
	return home, away
}

func normalizeCompetitor(c map[string]interface{}) provider.Competitor {
	teamID := provider.Int(c, "team", "id")
	if teamID == 0 {
		teamID = provider.Int(c, "id")
	}

	linescores := []int{}
	for _, ls := range provider.Maps(c, "linescores") {
		linescores = append(linescores, provider.Count(ls, "value"))
	}

	return provider.Competitor{
		TeamID:       teamID,
		Abbreviation: provider.String(c, "team", "abbreviation"),
		DisplayName:  provider.String(c, "team", "displayName"),
		Logo:         provider.FirstString(c, []string{"team", "logo"}, []string{"team", "logos", "0", "href"}),
		Score:        provider.Count(c, "score"),
		Linescores:   linescores,
		Winner:       provider.Bool(c, "winner"),
		Record:       recordSummary(provider.Maps(c, "records")),
	}
}

// recordSummary picks the overall record: type "total" or name "overall",
// then the first record.
func recordSummary(records []map[string]interface{}) string {
	for _, r := range records {
		if provider.String(r, "type") == "total" || provider.String(r, "name") == "overall" {
			return provider.String(r, "summary")
		}
	}
	if len(records) > 0 {
		return provider.String(records[0], "summary")
	}
	return ""
}

// broadcastNames takes the first name of each broadcast entry. Schedule
// payloads use a single "name" or media.shortName instead of names[].
func broadcastNames(broadcasts []map[string]interface{}) []string {
	out := []string{}
	for _, b := range broadcasts {
		name := provider.String(b, "names", "0")
		if name == "" {
			name = provider.FirstString(b, []string{"name"}, []string{"media", "shortName"})
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// statLeaders groups leader entries by lower-cased category name.
func statLeaders(categories []map[string]interface{}) map[string][]provider.StatLeader {
	out := map[string][]provider.StatLeader{}
	for _, cat := range categories {
		name := strings.ToLower(provider.String(cat, "name"))
		if name == "" {
			continue
		}
		entries := out[name]
		if entries == nil {
			entries = []provider.StatLeader{}
		}
		for _, l := range provider.Maps(cat, "leaders") {
			athlete := provider.Map(l, "athlete")
			teamID := provider.Int(athlete, "team", "id")
			if teamID == 0 {
				teamID = provider.Int(l, "team", "id")
			}
			entries = append(entries, provider.StatLeader{
				PlayerID:     provider.Int(athlete, "id"),
				Name:         provider.String(athlete, "displayName"),
				TeamID:       teamID,
				Headshot:     provider.FirstString(athlete, []string{"headshot", "href"}, []string{"headshot"}),
				DisplayValue: provider.String(l, "displayValue"),
				Value:        provider.Float(l, "value"),
			})
		}
		out[name] = entries
	}
	return out
}
