package espn

import (
	"net/url"
	"strings"
)

// Endpoints holds the URL templates. Placeholders are written {name}; the
// scheme may be omitted, in which case https is assumed.
type Endpoints struct {
	Teams      string
	Team       string
	Roster     string
	Scoreboard string
	Schedule   string
	TeamStats  string
}

// DefaultEndpoints returns the public ESPN templates.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Teams:      "site.api.espn.com/apis/site/v2/sports/football/nfl/teams",
		Team:       "site.api.espn.com/apis/site/v2/sports/football/nfl/teams/{team_id}",
		Roster:     "site.api.espn.com/apis/site/v2/sports/football/nfl/teams/{team_id}/roster",
		Scoreboard: "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard?dates={date}",
		Schedule:   "https://cdn.espn.com/core/nfl/schedule?xhr=1&year={year}&week={week}",
		TeamStats:  "https://sports.core.api.espn.com/v2/sports/football/leagues/nfl/seasons/{year}/types/{season_type}/teams/{team_id}/statistics",
	}
}

// WithBase rewrites every template onto another origin, keeping paths and
// queries. Used to point the handler at a mirror or a test server.
func (e Endpoints) WithBase(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	rebase := func(tmpl string) string {
		u := BuildURL(tmpl, nil)
		if i := strings.Index(u, "://"); i >= 0 {
			rest := u[i+3:]
			if j := strings.Index(rest, "/"); j >= 0 {
				return base + rest[j:]
			}
		}
		return base
	}
	return Endpoints{
		Teams:      rebase(e.Teams),
		Team:       rebase(e.Team),
		Roster:     rebase(e.Roster),
		Scoreboard: rebase(e.Scoreboard),
		Schedule:   rebase(e.Schedule),
		TeamStats:  rebase(e.TeamStats),
	}
}

// BuildURL substitutes {name} placeholders with escaped values and prefixes
// https:// when the template has no scheme.
func BuildURL(template string, params map[string]string) string {
	out := template
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", url.PathEscape(v))
	}
	if !strings.HasPrefix(out, "http://") && !strings.HasPrefix(out, "https://") {
		out = "https://" + out
	}
	return out
}
