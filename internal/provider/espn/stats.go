package espn

import (
	"time"

	"github.com/gamecenter/nfl-data/internal/provider"
)

// keyStat names one projected value: the key under key_stats and the
// ordered (category, stat) lookups that may supply it.
type keyStat struct {
	key     string
	sources [][2]string
}

var offensiveKeyStats = []keyStat{
	{"passing_yards", [][2]string{{"passing", "net_passing_yards"}, {"passing", "passing_yards"}}},
	{"passing_tds", [][2]string{{"passing", "passing_touchdowns"}}},
	{"interceptions", [][2]string{{"passing", "interceptions"}}},
	{"qb_rating", [][2]string{{"passing", "qb_rating"}}},
	{"rushing_yards", [][2]string{{"rushing", "rushing_yards"}}},
	{"rushing_tds", [][2]string{{"rushing", "rushing_touchdowns"}}},
	{"receiving_yards", [][2]string{{"receiving", "receiving_yards"}}},
	{"receiving_tds", [][2]string{{"receiving", "receiving_touchdowns"}}},
}

var defensiveKeyStats = []keyStat{
	{"total_tackles", [][2]string{{"defensive", "total_tackles"}}},
	{"sacks", [][2]string{{"defensive", "sacks"}}},
	{"interceptions", [][2]string{{"defensive_interceptions", "interceptions"}, {"defensive", "interceptions"}}},
}

var specialTeamsKeyStats = []keyStat{
	{"field_goal_pct", [][2]string{{"kicking", "field_goal_pct"}}},
	{"extra_point_pct", [][2]string{{"kicking", "extra_point_pct"}}},
	{"punt_avg", [][2]string{{"punting", "gross_avg_punt_yards"}, {"punting", "yards_per_punt"}}},
}

// NormalizeTeamStats maps a team statistics payload into both stored
// shapes. Category and stat names are normalized. A payload without
// splits.categories yields nil.
func NormalizeTeamStats(doc map[string]interface{}, teamID, year, seasonType int, now time.Time) *provider.TeamStats {
	if provider.List(doc, "splits", "categories") == nil {
		return nil
	}
	categories := provider.Maps(doc, "splits", "categories")

	season := &provider.TeamSeasonStats{
		TeamID:     teamID,
		Season:     year,
		SeasonType: seasonType,
		AllStats:   map[string]map[string]provider.StatValue{},
		UpdatedAt:  now,
	}
	list := &provider.TeamStatList{
		TeamID:     teamID,
		Season:     year,
		SeasonType: seasonType,
		Stats:      []provider.StatEntry{},
		UpdatedAt:  now,
	}

	for _, cat := range categories {
		catName := provider.NormalizeStatName(provider.String(cat, "name"))
		if catName == "" {
			continue
		}
		bucket := season.AllStats[catName]
		if bucket == nil {
			bucket = map[string]provider.StatValue{}
			season.AllStats[catName] = bucket
		}

		for _, s := range provider.Maps(cat, "stats") {
			name := provider.NormalizeStatName(provider.String(s, "name"))
			if name == "" {
				continue
			}
			value := provider.Float(s, "value")
			display := provider.String(s, "displayValue")
			rank := provider.OptInt(s, "rank")
			perGame := provider.OptFloat(s, "perGameValue")
			perGameDisplay := provider.String(s, "perGameDisplayValue")

			bucket[name] = provider.StatValue{
				Value:               value,
				DisplayValue:        display,
				Rank:                rank,
				PerGameValue:        perGame,
				PerGameDisplayValue: perGameDisplay,
			}
			list.Stats = append(list.Stats, provider.StatEntry{
				Category:            catName,
				Name:                name,
				DisplayName:         provider.String(s, "displayName"),
				ShortDisplayName:    provider.String(s, "shortDisplayName"),
				Description:         provider.String(s, "description"),
				Abbreviation:        provider.String(s, "abbreviation"),
				Value:               value,
				DisplayValue:        display,
				PerGameValue:        perGame,
				PerGameDisplayValue: perGameDisplay,
				Rank:                rank,
				RankDisplayValue:    provider.String(s, "rankDisplayValue"),
			})
		}
	}

	season.KeyStats = provider.KeyStats{
		Offensive:    projectKeyStats(season.AllStats, offensiveKeyStats),
		Defensive:    projectKeyStats(season.AllStats, defensiveKeyStats),
		SpecialTeams: projectKeyStats(season.AllStats, specialTeamsKeyStats),
	}
	return &provider.TeamStats{Season: season, List: list}
}

// projectKeyStats resolves each key from its first present source. Keys
// with no source present are stored as null.
func projectKeyStats(all map[string]map[string]provider.StatValue, keys []keyStat) map[string]*provider.StatValue {
	out := make(map[string]*provider.StatValue, len(keys))
	for _, k := range keys {
		out[k.key] = nil
		for _, src := range k.sources {
			if v, ok := all[src[0]][src[1]]; ok {
				out[k.key] = &v
				break
			}
		}
	}
	return out
}
