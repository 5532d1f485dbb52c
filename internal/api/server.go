// Package api wires the chi router: middleware stack, health and metrics
// endpoints, Swagger UI and the /api/v1 routes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/gamecenter/nfl-data/internal/api/handler"
	"github.com/gamecenter/nfl-data/internal/cache"
	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/metrics"
	"github.com/gamecenter/nfl-data/internal/query"
	"github.com/gamecenter/nfl-data/internal/task"
)

// Dependencies are the long-lived services the router serves from.
type Dependencies struct {
	Store          docstore.Store
	Refresher      handler.Refresher
	Tasks          *task.Runner
	Cache          *cache.Cache
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps Dependencies, cfg *config.Config) *chi.Mux {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware(deps.Metrics))
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(handler.Deps{
		Store:     deps.Store,
		Query:     query.NewService(deps.Store, deps.Logger, query.WithFranchiseFallback(cfg.TeamLookupFallback)),
		Refresher: deps.Refresher,
		Tasks:     deps.Tasks,
		Cache:     deps.Cache,
		Config:    cfg,
		Logger:    deps.Logger,
	})

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		// Games
		r.Get("/games", h.GetGames)
		r.Post("/refresh-week", h.RefreshWeek)

		// Stats
		r.Get("/head-to-head/{away}/{home}", h.HeadToHeadStats)
		r.Get("/season-stats", h.GetSeasonStats)
		r.Get("/season-stats/catalog", h.GetStatCatalog)
		r.Post("/refresh-stats", h.RefreshStats)
		r.Get("/refresh-stats/status", h.RefreshStatsStatus)
		r.Get("/tasks/{runID}", h.GetTask)

		// Teams and schedules
		r.Get("/teams", h.GetTeams)
		r.Get("/teams/{teamID}", h.GetTeam)
		r.Get("/teams/{teamID}/details", h.GetTeamDetails)
		r.Get("/teams/{teamID}/roster", h.GetRoster)
		r.Get("/schedules/{year}/{week}", h.GetSchedule)
	})

	return r
}
