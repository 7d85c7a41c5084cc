// Package metrics exposes Prometheus collectors for generation,
// integrity, and session outcomes.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

const namespace = "clario"

// Metrics owns a private registry. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry  *prometheus.Registry
	sessions  *prometheus.CounterVec
	elapsed   prometheus.Histogram
	answered  prometheus.Histogram
	attempts  *prometheus.HistogramVec
	degraded  *prometheus.CounterVec
	integrity *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "finished_total",
			Help:      "Sessions that reached a terminal phase, by status and reason.",
		}, []string{"status", "reason"}),
		elapsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "elapsed_seconds",
			Help:      "Elapsed session time at the terminal transition.",
			Buckets:   []float64{30, 60, 120, 240, 360, 480, 600},
		}),
		answered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "answered_questions",
			Help:      "Questions with a recorded answer per finished session.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		attempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "attempts",
			Help:      "Provider attempts per tier call.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"tier"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "degraded_total",
			Help:      "Tier calls that fell back to the question bank.",
		}, []string{"tier"}),
		integrity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "integrity",
			Name:      "events_total",
			Help:      "Integrity events by kind and policy outcome.",
		}, []string{"kind", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessions, m.elapsed, m.answered, m.attempts, m.degraded, m.integrity,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) GenerationAttempts(tier string, attempts int) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(tier).Observe(float64(attempts))
}

func (m *Metrics) GenerationDegraded(tier string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(tier).Inc()
}

func (m *Metrics) IntegrityEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.integrity.WithLabelValues(kind, outcome).Inc()
}

// Deliver counts a finished session. It lets Metrics sit in a results
// fan-out next to the real sinks.
func (m *Metrics) Deliver(_ context.Context, rec session.Record) error {
	if m == nil {
		return nil
	}
	m.sessions.WithLabelValues(string(rec.Status), string(rec.Reason)).Inc()
	if !rec.StartedAt.IsZero() {
		m.elapsed.Observe(float64(rec.ElapsedSeconds))
		m.answered.Observe(float64(rec.Answered()))
	}
	return nil
}

var (
	_ questiongen.Recorder = (*Metrics)(nil)
	_ session.Sink         = (*Metrics)(nil)
)
