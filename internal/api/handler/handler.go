// Package handler provides HTTP handlers for all API endpoints.
// Handlers read the document store directly; there is no service layer.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/albapepper/soccerscore/internal/api/respond"
	"github.com/albapepper/soccerscore/internal/bkktime"
	"github.com/albapepper/soccerscore/internal/cache"
	"github.com/albapepper/soccerscore/internal/config"
	"github.com/albapepper/soccerscore/internal/metrics"
	"github.com/albapepper/soccerscore/internal/store"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    store.Store
	cache    cache.Cache
	ttl      time.Duration
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a Handler with shared dependencies. A nil cache disables
// response caching; ETags are still sent.
func New(st store.Store, c cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.NewMemory(false)
	}
	v := validator.New()
	if err := v.RegisterValidation("bkktime", func(fl validator.FieldLevel) bool {
		return bkktime.ValidBound(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register bkktime validation: %v", err))
	}
	return &Handler{
		store:    st,
		cache:    c,
		ttl:      cfg.CacheTTL,
		logger:   logger,
		validate: v,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and available endpoints.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "SoccerScore API",
		"version": Version,
		"status":  "running",
		"docs":    "/docs",
		"endpoints": []string{
			"/standings/{seasonId}",
			"/matches/{seasonId}",
		},
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

// HealthCheckStore verifies document store connectivity.
// @Summary Store health check
// @Description Pings the document store.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/store [get]
func (h *Handler) HealthCheckStore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Store health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"store":     "disconnected",
			"error":     "Store connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"store":     "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns response cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(r.Context()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// serveCached answers from the response cache when possible and otherwise
// renders load's result, caches it and sends it. If-None-Match is honoured
// on both paths.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) (any, error)) {
	ctx := r.Context()
	ifNoneMatch := r.Header.Get("If-None-Match")

	if data, etag, ok := h.cache.Get(ctx, key); ok {
		metrics.CacheHitsTotal.Inc()
		if cache.CheckETagMatch(ifNoneMatch, etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, h.ttl, true)
		return
	}
	metrics.CacheMissesTotal.Inc()

	v, err := load(ctx)
	if err != nil {
		h.logger.Error("Query failed", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Internal server error")
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Encode response failed", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Internal server error")
		return
	}

	etag := h.cache.Set(ctx, key, data, h.ttl)
	if cache.CheckETagMatch(ifNoneMatch, etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, h.ttl, false)
}
