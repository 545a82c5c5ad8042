// Package metrics exposes Prometheus instrumentation for triage, gateways and the inbox.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/triage"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the service
type Metrics struct {
	TriagesTotal     *prometheus.CounterVec
	TriageDuration   prometheus.Histogram
	AnalysisTotal    *prometheus.CounterVec
	GatewayCalls     *prometheus.CounterVec
	GatewayDuration  *prometheus.HistogramVec
	ImportedMessages *prometheus.CounterVec
	RepliesSent      *prometheus.CounterVec
}

// New registers and returns the service metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_triage_triages_total",
			Help: "Triaged messages by analysis and response source.",
		}, []string{"analysis", "response"}),
		TriageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "support_triage_triage_duration_seconds",
			Help:    "Duration of a full triage in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}),
		AnalysisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_triage_analysis_total",
			Help: "Model analysis attempts by outcome.",
		}, []string{"outcome"}),
		GatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_triage_gateway_calls_total",
			Help: "Language model calls by provider and result.",
		}, []string{"provider", "result"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "support_triage_gateway_duration_seconds",
			Help:    "Duration of language model calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"provider"}),
		ImportedMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_triage_imported_messages_total",
			Help: "Messages seen by the inbox by result.",
		}, []string{"result"}),
		RepliesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_triage_replies_total",
			Help: "Reply delivery attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.AnalysisTotal,
		m.GatewayCalls,
		m.GatewayDuration,
		m.ImportedMessages,
		m.RepliesSent,
	)

	return m
}

// TriageHooks returns pipeline hooks that update the triage metrics
func (m *Metrics) TriageHooks() triage.Hooks {
	return triage.Hooks{
		OnAnalysis: func(kind string, _ float64) {
			m.AnalysisTotal.WithLabelValues(kind).Inc()
		},
		OnComplete: func(sources core.Sources, duration float64) {
			m.TriagesTotal.WithLabelValues(string(sources.Analysis), string(sources.Response)).Inc()
			m.TriageDuration.Observe(duration)
		},
	}
}

// InboxHooks returns inbox hooks that update the import and reply metrics
func (m *Metrics) InboxHooks() core.InboxHooks {
	return core.InboxHooks{
		OnImport: func(received, stored, skipped int) {
			m.ImportedMessages.WithLabelValues("stored").Add(float64(stored))
			m.ImportedMessages.WithLabelValues("invalid").Add(float64(skipped))
			m.ImportedMessages.WithLabelValues("filtered").Add(float64(received - stored - skipped))
		},
		OnSend: func(err error) {
			result := "success"
			if err != nil {
				result = "error"
			}
			m.RepliesSent.WithLabelValues(result).Inc()
		},
	}
}

// InstrumentGateway wraps gw so every call is counted and timed under provider
func (m *Metrics) InstrumentGateway(provider string, gw core.Gateway) core.Gateway {
	return &instrumentedGateway{provider: provider, next: gw, metrics: m}
}

type instrumentedGateway struct {
	provider string
	next     core.Gateway
	metrics  *Metrics
}

func (g *instrumentedGateway) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.next.Complete(ctx, prompt)
	g.metrics.GatewayDuration.WithLabelValues(g.provider).Observe(time.Since(start).Seconds())

	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		result = "cancelled"
	default:
		result = "failure"
	}
	g.metrics.GatewayCalls.WithLabelValues(g.provider, result).Inc()
	return text, err
}

// Close releases the wrapped gateway when it holds resources
func (g *instrumentedGateway) Close() error {
	if closer, ok := g.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
