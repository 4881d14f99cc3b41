// Package httptransport is the thin HTTP surface of the analyzer host: a
// trigger endpoint, a health check and the Prometheus scrape target. It
// delegates to the analyzer without embedding engine logic.
package httptransport

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hashlookup/internal/analyzer"
)

// Runner is what the transport needs from the engine.
type Runner interface {
	Run(ctx context.Context) (*analyzer.Result, error)
}

// Handler serves the analyzer host endpoints.
type Handler struct {
	runner Runner
	log    *log.Logger
}

func NewHandler(runner Runner, logger *log.Logger) *Handler {
	return &Handler{runner: runner, log: logger}
}

// NewRouter wires the host endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/runs", h.handleRun)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRun triggers one synchronous analyzer pass. Runs are not coordinated:
// two overlapping requests over the same timeline only re-apply the same
// idempotent tags.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.log.Printf("analyzer run failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": string(analyzer.StatusError),
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
