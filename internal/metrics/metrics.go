// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JoinsTotal counts accepted queue joins by outcome.
	JoinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tgqueue_joins_total",
		Help: "Accepted queue joins.",
	}, []string{"outcome"})

	// CedeTurnsTotal counts successful cede-turn swaps.
	CedeTurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tgqueue_cede_turns_total",
		Help: "Successful cede-turn swaps.",
	})

	// ExpirationsTotal counts queues torn down by the expiry scheduler.
	ExpirationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tgqueue_expirations_total",
		Help: "Queues deleted automatically after their TTL.",
	})

	// HTTPDuration observes request latency by route and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tgqueue_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
