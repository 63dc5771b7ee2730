// Package metrics exposes the engine's Prometheus instrumentation: session
// lifecycle counters, scheduler tick latency, and eviction counts. Naming
// and construction follow the same promauto pattern as
// internal/control/middleware's HTTP metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdreplay_sessions_created_total",
		Help: "Total number of replay sessions created.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mdreplay_sessions_active",
		Help: "Number of sessions currently tracked by the registry (any non-evicted state).",
	})

	SessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdreplay_sessions_evicted_total",
		Help: "Total number of sessions removed by idle TTL eviction.",
	})

	SessionsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdreplay_sessions_completed_total",
		Help: "Total number of sessions that reached COMPLETED by exhausting the catalogue.",
	})

	EventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdreplay_events_published_total",
		Help: "Total number of catalogue events pushed to a session's outbound channel.",
	})

	SchedulerTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mdreplay_scheduler_tick_duration_seconds",
		Help:    "Wall-clock time spent in one scheduler tick, including any backpressure stall.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})

	CatalogueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mdreplay_catalogue_size",
		Help: "Number of events in the loaded catalogue.",
	})

	ControlOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mdreplay_control_ops_total",
		Help: "Total number of session control operations, by operation and outcome.",
	}, []string{"op", "outcome"})
)

// Handler returns the http.Handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
