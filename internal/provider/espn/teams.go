package espn

import (
	"time"

	"github.com/gamecenter/nfl-data/internal/provider"
)

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// NormalizeTeams walks sports[].leagues[].teams[].team of the team list
// payload.
func NormalizeTeams(doc map[string]interface{}, now time.Time) ([]provider.Team, int) {
	var teams []provider.Team
	dropped := 0
	for _, sport := range provider.Maps(doc, "sports") {
		for _, league := range provider.Maps(sport, "leagues") {
			for _, entry := range provider.Maps(league, "teams") {
				raw := provider.Map(entry, "team")
				if raw == nil {
					dropped++
					continue
				}
				team, ok := NormalizeTeam(raw, now)
				if !ok {
					dropped++
					continue
				}
				teams = append(teams, team)
			}
		}
	}
	return teams, dropped
}

// NormalizeTeam maps one team object. A team without a numeric id yields no
// record.
func NormalizeTeam(raw map[string]interface{}, now time.Time) (provider.Team, bool) {
	id := provider.Int(raw, "id")
	if id <= 0 {
		return provider.Team{}, false
	}
	return provider.Team{
		TeamID:           id,
		UID:              provider.String(raw, "uid"),
		Slug:             provider.String(raw, "slug"),
		Abbreviation:     provider.String(raw, "abbreviation"),
		DisplayName:      provider.String(raw, "displayName"),
		ShortDisplayName: provider.String(raw, "shortDisplayName"),
		Name:             provider.String(raw, "name"),
		Location:         provider.String(raw, "location"),
		Color:            provider.String(raw, "color"),
		AlternateColor:   provider.String(raw, "alternateColor"),
		LogoURL:          selectLogo(raw),
		Venue: provider.Venue{
			Name:     provider.String(raw, "venue", "fullName"),
			City:     provider.String(raw, "venue", "address", "city"),
			State:    provider.String(raw, "venue", "address", "state"),
			Capacity: provider.Count(raw, "venue", "capacity"),
		},
		Links: provider.TeamLinks{
			Clubhouse: selectLink(raw, "clubhouse"),
			Roster:    selectLink(raw, "roster"),
			Stats:     selectLink(raw, "stats"),
		},
		UpdatedAt: now,
	}, true
}

// selectLogo prefers the 500px variant, then the first logo with an href.
func selectLogo(raw map[string]interface{}) *string {
	logos := provider.Maps(raw, "logos")
	for _, l := range logos {
		if provider.Int(l, "width") == 500 {
			if href := provider.OptString(l, "href"); href != nil {
				return href
			}
		}
	}
	for _, l := range logos {
		if href := provider.OptString(l, "href"); href != nil {
			return href
		}
	}
	return nil
}

// selectLink returns the href of the first link whose rel set contains rel.
func selectLink(raw map[string]interface{}, rel string) *string {
	for _, link := range provider.Maps(raw, "links") {
		for _, r := range provider.Strings(link, "rel") {
			if r == rel {
				return provider.OptString(link, "href")
			}
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Team details
// --------------------------------------------------------------------------

// NormalizeTeamDetails maps the single-team payload's "team" object.
func NormalizeTeamDetails(raw map[string]interface{}, now time.Time) (provider.TeamDetails, bool) {
	id := provider.Int(raw, "id")
	if id <= 0 {
		return provider.TeamDetails{}, false
	}

	items := provider.Maps(raw, "record", "items")
	overall := recordItem(items, "total")
	home := recordItem(items, "home")
	road := recordItem(items, "road")

	details := provider.TeamDetails{
		TeamID:          id,
		DisplayName:     provider.String(raw, "displayName"),
		Abbreviation:    provider.String(raw, "abbreviation"),
		RecordSummary:   provider.String(raw, "recordSummary"),
		StandingSummary: provider.String(raw, "standingSummary"),
		Record: provider.TeamRecord{
			Overall: provider.OverallRecord{
				Wins:        recordStat(overall, "wins"),
				Losses:      recordStat(overall, "losses"),
				Ties:        recordStat(overall, "ties"),
				WinPercent:  recordFloat(overall, "winPercent"),
				GamesPlayed: recordStat(overall, "gamesPlayed"),
			},
			Home: provider.SplitRecord{
				Wins:    recordStat(home, "wins"),
				Losses:  recordStat(home, "losses"),
				Summary: provider.String(home, "summary"),
			},
			Road: provider.SplitRecord{
				Wins:    recordStat(road, "wins"),
				Losses:  recordStat(road, "losses"),
				Summary: provider.String(road, "summary"),
			},
		},
		UpdatedAt: now,
	}
	if details.RecordSummary == "" {
		details.RecordSummary = provider.String(overall, "summary")
	}

	if next := provider.Map(raw, "nextEvent", "0"); next != nil {
		details.NextGame = &provider.NextGame{
			ID:        provider.String(next, "id"),
			Name:      provider.String(next, "name"),
			ShortName: provider.String(next, "shortName"),
			Date:      provider.String(next, "date"),
		}
	}
	return details, true
}

// recordItem selects a record by exact type. Absent yields nil, which reads
// as a zeroed record.
func recordItem(items []map[string]interface{}, recordType string) map[string]interface{} {
	for _, item := range items {
		if provider.String(item, "type") == recordType {
			return item
		}
	}
	return nil
}

// recordFloat reads a record field either directly or from the nested
// stats[] list ESPN uses on the team endpoint.
func recordFloat(item map[string]interface{}, name string) float64 {
	if item == nil {
		return 0
	}
	if v := provider.OptFloat(item, name); v != nil {
		return *v
	}
	for _, s := range provider.Maps(item, "stats") {
		if provider.String(s, "name") == name {
			return provider.Float(s, "value")
		}
	}
	return 0
}

func recordStat(item map[string]interface{}, name string) int {
	v := int(recordFloat(item, name))
	if v < 0 {
		return 0
	}
	return v
}
