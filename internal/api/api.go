// Package api serves the triage dashboard HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/support-triage/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Analyzer triages free text
type Analyzer interface {
	TriageText(ctx context.Context, text string) (*core.TriageResult, error)
}

// Inbox defines the record operations the dashboard needs
type Inbox interface {
	List(ctx context.Context) ([]*core.Record, error)
	Get(ctx context.Context, id string) (*core.Record, error)
	UpdateResponse(ctx context.Context, id, response string) (*core.Record, error)
	Send(ctx context.Context, id string) (*core.Record, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*core.Stats, error)
}

// API holds dependencies for HTTP handlers
type API struct {
	logger      *zap.Logger
	analyzer    Analyzer
	inbox       Inbox
	development bool
	now         func() time.Time
}

// New creates a new API. development exposes internal error details in
// 500 responses.
func New(logger *zap.Logger, analyzer Analyzer, inbox Inbox, development bool) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if analyzer == nil || inbox == nil {
		panic("api: analyzer and inbox are required")
	}
	return &API{
		logger:      logger,
		analyzer:    analyzer,
		inbox:       inbox,
		development: development,
		now:         time.Now,
	}
}

// RegisterRoutes attaches API endpoints to the router
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/ai/analyze", a.handleAnalyze)

		r.Get("/emails", a.handleListEmails)
		r.Get("/emails/{id}", a.handleGetEmail)
		r.Delete("/emails/{id}", a.handleDeleteEmail)
		r.Put("/emails/{id}/response", a.handleUpdateResponse)
		r.Post("/emails/{id}/send", a.handleSendEmail)

		r.Get("/stats", a.handleStats)
	})
}

// Handler returns the full HTTP handler with middleware, health check and
// the Prometheus endpoint for gatherer
func (a *API) Handler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.recoverer)
	r.Use(a.accessLog)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	a.RegisterRoutes(r)
	return r
}
