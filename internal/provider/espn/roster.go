package espn

import (
	"time"

	"github.com/gamecenter/nfl-data/internal/provider"
)

// NormalizeRoster maps a roster payload. Athletes may be listed flat or
// grouped by position under items[].
func NormalizeRoster(doc map[string]interface{}, teamID int, now time.Time) ([]provider.Player, int) {
	var players []provider.Player
	dropped := 0
	for _, entry := range provider.Maps(doc, "athletes") {
		group := provider.Maps(entry, "items")
		if len(group) == 0 && provider.List(entry, "items") == nil {
			group = []map[string]interface{}{entry}
		}
		for _, athlete := range group {
			p, ok := NormalizePlayer(athlete, teamID, now)
			if !ok {
				dropped++
				continue
			}
			players = append(players, p)
		}
	}
	return players, dropped
}

// NormalizePlayer maps one athlete. An athlete without a numeric id yields
// no record.
func NormalizePlayer(raw map[string]interface{}, teamID int, now time.Time) (provider.Player, bool) {
	id := provider.Int(raw, "id")
	if id <= 0 {
		return provider.Player{}, false
	}

	experience := provider.Count(raw, "experience", "years")
	if provider.Map(raw, "experience") == nil {
		experience = provider.Count(raw, "experience")
	}

	return provider.Player{
		PlayerID:    id,
		UID:         provider.String(raw, "uid"),
		TeamID:      teamID,
		Jersey:      provider.String(raw, "jersey"),
		DisplayName: provider.String(raw, "displayName"),
		FullName:    provider.String(raw, "fullName"),
		ShortName:   provider.String(raw, "shortName"),
		FirstName:   provider.String(raw, "firstName"),
		LastName:    provider.String(raw, "lastName"),
		Position: provider.Position{
			Name:         provider.String(raw, "position", "name"),
			Abbreviation: provider.String(raw, "position", "abbreviation"),
			DisplayName:  provider.String(raw, "position", "displayName"),
		},
		HeadshotURL: provider.FirstString(raw, []string{"headshot", "href"}, []string{"headshot"}),
		Age:         provider.Count(raw, "age"),
		Height:      provider.FirstString(raw, []string{"displayHeight"}, []string{"height"}),
		Weight:      provider.FirstString(raw, []string{"displayWeight"}, []string{"weight"}),
		Experience:  experience,
		College:     provider.FirstString(raw, []string{"college", "name"}, []string{"college"}),
		Status:      provider.FirstString(raw, []string{"status", "name"}, []string{"status"}),
		UpdatedAt:   now,
	}, true
}
