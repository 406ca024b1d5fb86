package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRegistry holds this engine's Prometheus collectors, kept separate
// from the default registry so tests can re-register freely.
var MetricsRegistry = prometheus.NewRegistry()

var (
	proposalsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchmate",
		Subsystem: "proposals",
		Name:      "created_total",
		Help:      "Total number of proposals created.",
	})

	proposalsConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchmate",
		Subsystem: "proposals",
		Name:      "confirmed_total",
		Help:      "Total number of proposals that reached unanimous acceptance.",
	})

	proposalsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchmate",
		Subsystem: "proposals",
		Name:      "cancelled_total",
		Help:      "Total number of proposals cancelled by reject or withdrawal.",
	})

	proposalsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchmate",
		Subsystem: "proposals",
		Name:      "expired_total",
		Help:      "Total number of proposals expired by the background sweep.",
	})

	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchmate",
		Subsystem: "suggestions",
		Name:      "cache_hits_total",
		Help:      "Suggestion reads served from the date cache.",
	})

	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lunchmate",
		Subsystem: "suggestions",
		Name:      "cache_misses_total",
		Help:      "Suggestion reads that triggered regeneration.",
	})
)

func init() {
	MetricsRegistry.MustRegister(
		proposalsCreated,
		proposalsConfirmed,
		proposalsCancelled,
		proposalsExpired,
		cacheHits,
		cacheMisses,
	)
}
