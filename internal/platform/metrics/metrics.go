// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FailoverTransitions counts primary-healthy -> primary-down flips.
	FailoverTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storage_failover_transitions_total",
		Help: "Number of times the primary store was marked down.",
	})

	// PrimaryHealthy is 1 while the primary store is believed healthy.
	PrimaryHealthy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storage_primary_healthy",
		Help: "Whether the primary store is currently serving requests.",
	})

	// FallbackCalls counts repository calls answered by the fallback
	// table, including the retry right after a failover.
	FallbackCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storage_fallback_calls_total",
		Help: "Repository calls served by the in-memory fallback store.",
	})

	// HTTPRequests counts requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served.",
	}, []string{"method", "status"})
)
