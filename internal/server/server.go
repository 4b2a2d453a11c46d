package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/psantana5/timethis/internal/logging"
	"github.com/psantana5/timethis/internal/report"
)

// Handler exposes a watch daemon's measurements over HTTP
type Handler struct {
	metrics  *report.Metrics
	recent   *report.RecentResults
	failures *report.FailureLog
	logger   *logging.Logger
	started  time.Time
}

// NewHandler creates a handler over the given report state. A nil logger
// discards.
func NewHandler(metrics *report.Metrics, recent *report.RecentResults, failures *report.FailureLog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		metrics:  metrics,
		recent:   recent,
		failures: failures,
		logger:   logger,
		started:  time.Now(),
	}
}

// RegisterRoutes registers all routes on router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	router.HandleFunc("/results", h.ListResults).Methods("GET")
	router.HandleFunc("/failures", h.ListFailures).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")
}

// Router returns a fresh router with all routes registered
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

// NewServer wraps the router in an http.Server with the usual timeouts
func NewServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ListResults returns the latest results, newest first
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	results := h.recent.Latest(limit)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// ListFailures returns the latest failed measurements, newest first
func (h *Handler) ListFailures(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	failures := h.failures.Recent(limit)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"failures": failures,
		"count":    len(failures),
	})
}

// Health reports liveness and uptime
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", logging.Fields{"error": err.Error()})
	}
}
