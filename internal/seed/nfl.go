package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/metrics"
	"github.com/gamecenter/nfl-data/internal/nfl"
	"github.com/gamecenter/nfl-data/internal/provider"
)

// ErrWeekNotFound is returned when a (year, season type, week) is not in the
// static calendar.
var ErrWeekNotFound = errors.New("week not found")

// ErrNoStatsFetched is returned by a replacing stats refresh that could not
// fetch a single team. The existing documents are left untouched.
var ErrNoStatsFetched = errors.New("no team statistics fetched")

// Source is the upstream the loader pulls from. Every method reports
// failures as "no data" rather than as an error.
type Source interface {
	Teams(ctx context.Context) provider.Batch[provider.Team]
	TeamDetails(ctx context.Context, teamID int) *provider.TeamDetails
	Roster(ctx context.Context, teamID int) provider.Batch[provider.Player]
	Scoreboard(ctx context.Context, date string) provider.Batch[provider.Game]
	Schedule(ctx context.Context, year, week int) *provider.Schedule
	TeamStats(ctx context.Context, teamID, year, seasonType int) *provider.TeamStats
}

// Loader drives Fetch -> Extract -> Upsert for every entity type.
type Loader struct {
	store      docstore.Store
	source     Source
	metrics    metrics.Metrics
	logger     *slog.Logger
	statsDelay time.Duration
	now        func() time.Time
}

// Option customizes a Loader.
type Option func(*Loader)

// WithMetrics records store writes.
func WithMetrics(m metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithStatsDelay sets the pause between team statistics requests.
func WithStatsDelay(d time.Duration) Option {
	return func(l *Loader) { l.statsDelay = d }
}

// WithClock replaces the wall clock used to pick the current week.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a loader writing to store.
func NewLoader(store docstore.Store, source Source, logger *slog.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		store:   store,
		source:  source,
		metrics: metrics.Nop{},
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// recordDropped counts payload entries that produced no record.
func recordDropped(tally *Tally, what string, dropped int) {
	if dropped > 0 {
		tally.Failed += dropped
		tally.Errors = append(tally.Errors, fmt.Sprintf("%s: %d entries missing required fields", what, dropped))
	}
}

// --------------------------------------------------------------------------
// Teams
// --------------------------------------------------------------------------

// LoadAllTeams loads the league team list.
func (l *Loader) LoadAllTeams(ctx context.Context) Tally {
	var tally Tally
	batch := l.source.Teams(ctx)
	if !batch.Fetched {
		tally.AddError("fetch teams: no data")
		return tally
	}
	recordDropped(&tally, "teams", batch.Dropped)
	for _, team := range batch.Items {
		l.UpsertTeam(ctx, &tally, team)
	}
	l.logger.Info("Teams loaded", "summary", tally.Summary())
	return tally
}

// LoadTeamDetails loads one team's record and next game.
func (l *Loader) LoadTeamDetails(ctx context.Context, teamID int) Tally {
	var tally Tally
	details := l.source.TeamDetails(ctx, teamID)
	if details == nil {
		tally.AddErrorf("fetch team details %d: no data", teamID)
		return tally
	}
	l.UpsertTeamDetails(ctx, &tally, *details)
	return tally
}

// LoadAllTeamDetails loads details for every franchise.
func (l *Loader) LoadAllTeamDetails(ctx context.Context) Tally {
	var tally Tally
	for _, id := range nfl.TeamIDs() {
		if ctx.Err() != nil {
			tally.AddErrorf("team details: %v", ctx.Err())
			break
		}
		tally.Add(l.LoadTeamDetails(ctx, id))
	}
	l.logger.Info("Team details loaded", "summary", tally.Summary())
	return tally
}

// LoadRoster loads one team's players.
func (l *Loader) LoadRoster(ctx context.Context, teamID int) Tally {
	var tally Tally
	batch := l.source.Roster(ctx, teamID)
	if !batch.Fetched {
		tally.AddErrorf("fetch roster %d: no data", teamID)
		return tally
	}
	recordDropped(&tally, fmt.Sprintf("roster %d", teamID), batch.Dropped)
	for _, p := range batch.Items {
		l.UpsertPlayer(ctx, &tally, p)
	}
	return tally
}

// LoadAllRosters loads the roster of every franchise.
func (l *Loader) LoadAllRosters(ctx context.Context) Tally {
	var tally Tally
	for _, id := range nfl.TeamIDs() {
		if ctx.Err() != nil {
			tally.AddErrorf("rosters: %v", ctx.Err())
			break
		}
		tally.Add(l.LoadRoster(ctx, id))
	}
	l.logger.Info("Rosters loaded", "summary", tally.Summary())
	return tally
}

// --------------------------------------------------------------------------
// Games and schedules
// --------------------------------------------------------------------------

// LoadScoreboard loads every game of one YYYYMMDD date. A date without
// games is an empty, successful load.
func (l *Loader) LoadScoreboard(ctx context.Context, date string) Tally {
	var tally Tally
	batch := l.source.Scoreboard(ctx, date)
	if !batch.Fetched {
		tally.AddErrorf("fetch scoreboard %s: no data", date)
		return tally
	}
	recordDropped(&tally, "scoreboard "+date, batch.Dropped)
	for _, g := range batch.Items {
		l.UpsertGame(ctx, &tally, g)
	}
	return tally
}

// LoadScoreboardRange loads every date from one YYYYMMDD date to another,
// inclusive.
func (l *Loader) LoadScoreboardRange(ctx context.Context, from, to string) (Tally, error) {
	start, err := nfl.ParseScoreboardDate(from)
	if err != nil {
		return Tally{}, err
	}
	end, err := nfl.ParseScoreboardDate(to)
	if err != nil {
		return Tally{}, err
	}
	dates := nfl.Dates(start, end)
	if len(dates) == 0 {
		return Tally{}, fmt.Errorf("date range %s..%s is empty", from, to)
	}

	var tally Tally
	for _, d := range dates {
		if ctx.Err() != nil {
			return tally, ctx.Err()
		}
		tally.Add(l.LoadScoreboard(ctx, d))
	}
	l.logger.Info("Scoreboards loaded", "from", from, "to", to, "summary", tally.Summary())
	return tally, nil
}

// RefreshWeek resolves a calendar week to its dates and loads the scoreboard
// of each one. seasonType 0 means the regular season.
func (l *Loader) RefreshWeek(ctx context.Context, year, seasonType, week int) (WeekResult, error) {
	if seasonType == 0 {
		seasonType = config.SeasonTypeRegular
	}
	result := WeekResult{Year: year, SeasonType: seasonType, Week: week}

	w, ok := nfl.LookupWeek(year, seasonType, week)
	if !ok {
		return result, fmt.Errorf("%w: season %d type %d week %d", ErrWeekNotFound, year, seasonType, week)
	}
	dates, err := w.Dates()
	if err != nil {
		return result, err
	}
	result.Dates = dates

	for _, d := range dates {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Tally.Add(l.LoadScoreboard(ctx, d))
	}

	result.GamesUpdated = result.Tally.Written()
	if result.GamesUpdated == 0 {
		result.Message = "no games found"
	} else {
		result.Message = fmt.Sprintf("updated %d games", result.GamesUpdated)
	}
	l.logger.Info("Week refreshed",
		"season", year, "season_type", seasonType, "week", week,
		"dates", len(dates), "games", result.GamesUpdated, "failed", result.Tally.Failed)
	return result, nil
}

// LoadSchedule loads the schedule document of one week.
func (l *Loader) LoadSchedule(ctx context.Context, year, week int) Tally {
	var tally Tally
	sched := l.source.Schedule(ctx, year, week)
	if sched == nil {
		tally.AddErrorf("fetch schedule %d week %d: no data", year, week)
		return tally
	}
	l.UpsertSchedule(ctx, &tally, *sched)
	return tally
}

// LoadSeasonSchedule loads weeks 1..weeks of a season.
func (l *Loader) LoadSeasonSchedule(ctx context.Context, year, weeks int) Tally {
	var tally Tally
	for week := 1; week <= weeks; week++ {
		if ctx.Err() != nil {
			tally.AddErrorf("schedule: %v", ctx.Err())
			break
		}
		tally.Add(l.LoadSchedule(ctx, year, week))
	}
	l.logger.Info("Season schedule loaded", "season", year, "weeks", weeks, "summary", tally.Summary())
	return tally
}

// --------------------------------------------------------------------------
// Team statistics
// --------------------------------------------------------------------------

// LoadTeamStats loads one team's regular season statistics.
func (l *Loader) LoadTeamStats(ctx context.Context, teamID, year int) Tally {
	var tally Tally
	stats := l.source.TeamStats(ctx, teamID, year, config.SeasonTypeRegular)
	if stats == nil {
		tally.AddErrorf("fetch team stats %d/%d: no data", teamID, year)
		return tally
	}
	l.UpsertTeamStats(ctx, &tally, *stats)
	return tally
}

// LoadAllTeamStats loads regular season statistics for every franchise,
// pausing between requests. With replace, both statistics collections are
// rebuilt in a new generation and swapped in at the end: documents of other
// seasons and of teams whose fetch failed are carried forward, and a run
// that fetched nothing leaves the collections untouched.
func (l *Loader) LoadAllTeamStats(ctx context.Context, year int, replace bool) (Tally, error) {
	if replace {
		return l.replaceAllTeamStats(ctx, year)
	}

	var tally Tally
	for i, id := range nfl.TeamIDs() {
		if i > 0 {
			if err := l.pause(ctx); err != nil {
				return tally, err
			}
		}
		tally.Add(l.LoadTeamStats(ctx, id, year))
	}
	l.logger.Info("Team stats loaded", "season", year, "summary", tally.Summary())
	return tally, nil
}

func (l *Loader) replaceAllTeamStats(ctx context.Context, year int) (Tally, error) {
	var tally Tally
	seasonGen, err := l.store.BeginGeneration(ctx, config.TeamSeasonStatsCollection)
	if err != nil {
		return tally, fmt.Errorf("begin %s generation: %w", config.TeamSeasonStatsCollection, err)
	}
	listGen, err := l.store.BeginGeneration(ctx, config.TeamStatListsCollection)
	if err != nil {
		_ = seasonGen.Abort(ctx)
		return tally, fmt.Errorf("begin %s generation: %w", config.TeamStatListsCollection, err)
	}
	// Abort is a no-op once a generation is committed.
	defer func() {
		abortCtx := context.WithoutCancel(ctx)
		_ = seasonGen.Abort(abortCtx)
		_ = listGen.Abort(abortCtx)
	}()

	existing, err := l.existingKeys(ctx, config.TeamStatListsCollection)
	if err != nil {
		return tally, err
	}

	l.logger.Info("Replacing team stats", "season", year,
		"season_generation", seasonGen.ID(), "list_generation", listGen.ID())

	failed := make(map[int]bool)
	succeeded := 0
	for i, id := range nfl.TeamIDs() {
		if i > 0 {
			if err := l.pause(ctx); err != nil {
				return tally, err
			}
		}
		stats := l.source.TeamStats(ctx, id, year, config.SeasonTypeRegular)
		if stats == nil || stats.Season == nil || stats.List == nil {
			failed[id] = true
			tally.AddErrorf("fetch team stats %d/%d: no data", id, year)
			continue
		}

		key := provider.TeamStatsKey(id, year, config.SeasonTypeRegular)
		if err := seasonGen.Put(ctx, key, stats.Season); err != nil {
			failed[id] = true
			tally.AddErrorf("put %s/%s: %v", config.TeamSeasonStatsCollection, key, err)
			continue
		}
		if err := listGen.Put(ctx, key, stats.List); err != nil {
			failed[id] = true
			tally.AddErrorf("put %s/%s: %v", config.TeamStatListsCollection, key, err)
			continue
		}
		succeeded++
		if existing[key] {
			tally.Updated++
		} else {
			tally.Created++
		}
	}

	if succeeded == 0 {
		l.logger.Warn("Team stats refresh fetched nothing, keeping existing documents", "season", year)
		return tally, fmt.Errorf("%w for season %d", ErrNoStatsFetched, year)
	}

	keep := carryForward(year, config.SeasonTypeRegular, failed)
	seasonCarried, err := seasonGen.Commit(ctx, keep)
	if err != nil {
		return tally, fmt.Errorf("commit %s: %w", config.TeamSeasonStatsCollection, err)
	}
	listCarried, err := listGen.Commit(ctx, keep)
	if err != nil {
		return tally, fmt.Errorf("commit %s: %w", config.TeamStatListsCollection, err)
	}

	l.metrics.AddStoreWrites(config.TeamSeasonStatsCollection, "created", tally.Created)
	l.metrics.AddStoreWrites(config.TeamSeasonStatsCollection, "updated", tally.Updated)
	l.metrics.AddStoreWrites(config.TeamStatListsCollection, "created", tally.Created)
	l.metrics.AddStoreWrites(config.TeamStatListsCollection, "updated", tally.Updated)

	l.logger.Info("Team stats replaced",
		"season", year, "summary", tally.Summary(),
		"carried_season_docs", seasonCarried, "carried_list_docs", listCarried)
	return tally, nil
}

// carryForward keeps unwritten documents of other seasons and of teams whose
// fetch failed. This season's documents for any other team are dropped.
func carryForward(year, seasonType int, failed map[int]bool) func(key string) bool {
	suffix := fmt.Sprintf(":%d:%d", year, seasonType)
	return func(key string) bool {
		if !strings.HasSuffix(key, suffix) {
			return true
		}
		teamID, err := strconv.Atoi(strings.TrimSuffix(key, suffix))
		return err == nil && failed[teamID]
	}
}

func (l *Loader) existingKeys(ctx context.Context, collection string) (map[string]bool, error) {
	docs, err := l.store.Find(ctx, collection, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	keys := make(map[string]bool, len(docs))
	for _, d := range docs {
		keys[d.Key] = true
	}
	return keys, nil
}

// pause waits out the inter-request delay unless ctx ends first.
func (l *Loader) pause(ctx context.Context) error {
	if l.statsDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(l.statsDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// --------------------------------------------------------------------------
// Initial load
// --------------------------------------------------------------------------

// LoadInitialData runs the full first-time load for a season: teams, team
// details, rosters, the current week's games, the season schedule and team
// statistics.
func (l *Loader) LoadInitialData(ctx context.Context, year int) Tally {
	var total Tally

	l.logger.Info("Phase 1/6: Loading teams...")
	total.Add(l.LoadAllTeams(ctx))

	l.logger.Info("Phase 2/6: Loading team details...")
	total.Add(l.LoadAllTeamDetails(ctx))

	l.logger.Info("Phase 3/6: Loading rosters...")
	total.Add(l.LoadAllRosters(ctx))

	l.logger.Info("Phase 4/6: Loading current games...")
	total.Add(l.LoadCurrentGames(ctx))

	l.logger.Info("Phase 5/6: Loading season schedule...", "season", year)
	total.Add(l.LoadSeasonSchedule(ctx, year, config.RegularSeasonWeeks))

	l.logger.Info("Phase 6/6: Loading team stats...", "season", year)
	stats, err := l.LoadAllTeamStats(ctx, year, false)
	total.Add(stats)
	if err != nil {
		total.AddErrorf("team stats: %v", err)
	}

	l.logger.Info("Initial load complete", "season", year, "summary", total.Summary())
	return total
}

// LoadCurrentGames refreshes the calendar week containing now, or just
// today's scoreboard outside the calendar.
func (l *Loader) LoadCurrentGames(ctx context.Context) Tally {
	now := l.now()
	if w, ok := nfl.CurrentWeek(now); ok {
		res, err := l.RefreshWeek(ctx, w.Year, w.SeasonType, w.Week)
		if err != nil {
			res.Tally.AddErrorf("current week: %v", err)
		}
		return res.Tally
	}
	return l.LoadScoreboard(ctx, nfl.ScoreboardDate(now))
}
