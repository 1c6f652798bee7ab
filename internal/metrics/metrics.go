package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for missionhub
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Import Metrics
	ImportRunsTotal     *prometheus.CounterVec
	ImportMissionsTotal *prometheus.CounterVec
	ImportDuration      *prometheus.HistogramVec
	ImportQueueDepth    *prometheus.GaugeVec

	// Provider Metrics
	ProviderCallsTotal *prometheus.CounterVec
	CacheHitsTotal     *prometheus.CounterVec
	CacheMissesTotal   *prometheus.CounterVec

	// Mirror Metrics
	MirrorRecordsTotal *prometheus.CounterVec
}

// NewMetricsRegistry registers all metrics on the default Prometheus registerer
func NewMetricsRegistry() *MetricsRegistry {
	return NewMetricsRegistryWith(prometheus.DefaultRegisterer)
}

// NewMetricsRegistryWith registers all metrics on reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetricsRegistryWith(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "missionhub_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "missionhub_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Import Metrics
		ImportRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_import_runs_total",
				Help: "Publisher import runs by terminal status",
			},
			[]string{"publisher", "status"},
		),
		ImportMissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_import_missions_total",
				Help: "Missions processed by import outcome (created, updated, deleted, refused)",
			},
			[]string{"publisher", "outcome"},
		),
		ImportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "missionhub_import_duration_seconds",
				Help:    "Publisher import execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"publisher"},
		),
		ImportQueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "missionhub_import_queue_depth",
				Help: "Manual import requests by queue state (queued, pending)",
			},
			[]string{"state"},
		),

		// Provider Metrics
		ProviderCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_provider_calls_total",
				Help: "External provider calls by provider and result",
			},
			[]string{"provider", "result"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Mirror Metrics
		MirrorRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missionhub_mirror_records_total",
				Help: "Analytics mirror records by kind and result (upserted, skipped, failed)",
			},
			[]string{"kind", "result"},
		),
	}
}
