// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_search_requests_total",
			Help: "Total number of search requests by response type and mode",
		},
		[]string{"type", "mode"}, // mode: "batch", "stream"
	)

	FallbackSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_fallback_steps_total",
			Help: "Total number of fallback ladder steps executed",
		},
		[]string{"step"},
	)

	LLMExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_llm_extractions_total",
			Help: "Total number of model intent extractions by outcome",
		},
		[]string{"outcome"}, // "ok", "config", "parse", "schema", "error"
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_upstream_requests_total",
			Help: "Total number of catalog API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_upstream_request_duration_seconds",
			Help:    "Duration of catalog API attempts in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3.5, 5},
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_cache_lookups_total",
			Help: "Total number of page and provider cache lookups",
		},
		[]string{"kind", "result"}, // result: "hit", "miss"
	)

	StreamedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_streamed_events_total",
			Help: "Total number of NDJSON events written",
		},
		[]string{"type"},
	)
)
