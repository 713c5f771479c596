// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts calls to the jobs backend by endpoint and outcome
	// (ok, or the error kind).
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nextfit",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Requests issued to the jobs backend.",
	}, []string{"endpoint", "outcome"})

	// FeedFetches counts page fetches started by feed pagers.
	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nextfit",
		Subsystem: "feed",
		Name:      "fetches_total",
		Help:      "Feed page fetches issued, by access mode and page kind.",
	}, []string{"mode", "page"})

	// FeedStaleResponses counts responses dropped because their query was replaced.
	FeedStaleResponses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nextfit",
		Subsystem: "feed",
		Name:      "stale_responses_total",
		Help:      "Fetch results discarded because a newer query started.",
	})

	// FeedCoercedErrors counts public-mode failures turned into empty pages.
	FeedCoercedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nextfit",
		Subsystem: "feed",
		Name:      "coerced_errors_total",
		Help:      "Public feed failures rendered as an empty page.",
	}, []string{"kind"})

	// ActivePagers reports the number of pagers held by the registry.
	ActivePagers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nextfit",
		Subsystem: "feed",
		Name:      "active_pagers",
		Help:      "Feed pagers currently held in memory.",
	})
)
