// Package handler provides HTTP handlers for all API endpoints.
// Read handlers go through the query service and cache encoded responses
// with an ETag; refresh handlers drive the loader directly or through the
// background task runner.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/gamecenter/nfl-data/internal/api/respond"
	"github.com/gamecenter/nfl-data/internal/cache"
	"github.com/gamecenter/nfl-data/internal/config"
	"github.com/gamecenter/nfl-data/internal/docstore"
	"github.com/gamecenter/nfl-data/internal/query"
	"github.com/gamecenter/nfl-data/internal/seed"
	"github.com/gamecenter/nfl-data/internal/task"
)

// Refresher is the part of the loader the refresh endpoints drive.
type Refresher interface {
	RefreshWeek(ctx context.Context, year, seasonType, week int) (seed.WeekResult, error)
	LoadAllTeamStats(ctx context.Context, year int, replace bool) (seed.Tally, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store     docstore.Store
	query     *query.Service
	refresher Refresher
	tasks     *task.Runner
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validate
}

// Deps bundles what New needs.
type Deps struct {
	Store     docstore.Store
	Query     *query.Service
	Refresher Refresher
	Tasks     *task.Runner
	Cache     *cache.Cache
	Config    *config.Config
	Logger    *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     d.Store,
		query:     d.Query,
		refresher: d.Refresher,
		tasks:     d.Tasks,
		cache:     d.Cache,
		cfg:       d.Config,
		logger:    logger,
		validator: validator.New(),
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and docs location.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "NFL Game Center Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"season":  config.SeasonLabel(h.cfg.DefaultSeason()),
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies document store connectivity.
// @Summary Database health check
// @Description Verifies the document store is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Store health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys, hits, misses).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// serveCached answers from the cache when possible and otherwise builds,
// encodes and caches the value. build errors are written by writeQueryError.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, build func(ctx context.Context) (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := build(r.Context())
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	data, err := respond.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode response")
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// writeQueryError maps query and loader errors to HTTP statuses.
func (h *Handler) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrTeamNotFound):
		respond.WriteError(w, http.StatusNotFound, "TEAM_NOT_FOUND", err.Error())
	case errors.Is(err, query.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, query.ErrUnknownStat):
		respond.WriteError(w, http.StatusBadRequest, "UNKNOWN_STAT", err.Error())
	case errors.Is(err, seed.ErrWeekNotFound):
		respond.WriteError(w, http.StatusNotFound, "WEEK_NOT_FOUND", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.WriteError(w, http.StatusServiceUnavailable, "CANCELLED", "Request was cancelled")
	default:
		h.logger.Error("Request failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}

// intQuery reads an optional integer query parameter. ok is false after an
// error response has been written.
func intQuery(w http.ResponseWriter, r *http.Request, name string, fallback, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_"+strings.ToUpper(name),
			fmt.Sprintf("%s must be an integer between %d and %d", name, lo, hi))
		return 0, false
	}
	return n, true
}

// intParam reads a required integer path value.
func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_"+strings.ToUpper(name), name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

// flexInt is a request body integer that also accepts a numeric string,
// as in {"season_start":"2025"}. null and "" decode as zero.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid string %s: %w", s, err)
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected an integer or a numeric string, got %s", b)
	}
	*n = flexInt(v)
	return nil
}

// Or returns n, or fallback when n is zero.
func (n flexInt) Or(fallback int) int {
	if n == 0 {
		return fallback
	}
	return int(n)
}

const maxBodyBytes = 1 << 16

// decodeBody reads a JSON request body into dst and validates it. An empty
// body decodes as an empty object.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body could not be read")
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object", err.Error())
		return false
	}
	if err := h.validator.StructCtx(r.Context(), dst); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "VALIDATION_FAILED", "Request body failed validation", err.Error())
		return false
	}
	return true
}

func seasonBounds() (int, int) {
	return 2000, time.Now().Year() + 1
}
