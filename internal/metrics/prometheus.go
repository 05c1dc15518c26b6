package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal counts finished recommendation jobs by terminal status.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckscout_recommendations_total",
			Help: "Total number of finished recommendation jobs",
		},
		[]string{"status"},
	)

	// ScorerDuration tracks scorer subprocess wall time in seconds.
	ScorerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deckscout_scorer_duration_seconds",
			Help:    "Duration of scorer subprocess invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	// JobsActive tracks the number of currently live recommendation jobs.
	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deckscout_jobs_active",
			Help: "Number of currently live recommendation jobs",
		},
	)

	// CacheEvents counts card catalog cache activity by tier and event.
	CacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckscout_cardpool_cache_events_total",
			Help: "Card catalog cache events (hit, miss, evict)",
		},
		[]string{"tier", "event"},
	)

	// UpstreamRequests counts HTTP requests against the upstream card catalog.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deckscout_upstream_requests_total",
			Help: "Total number of upstream card catalog requests",
		},
		[]string{"outcome"},
	)
)
