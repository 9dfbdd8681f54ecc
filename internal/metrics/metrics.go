package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Store Metrics
	StoreOpsTotal   *prometheus.CounterVec
	StoreOpDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Ingestion Metrics
	ProviderCallsTotal      *prometheus.CounterVec
	IngestionDaysTotal      *prometheus.CounterVec
	RecordsSavedTotal       *prometheus.CounterVec
	RecordsOverwrittenTotal prometheus.Counter
	CollectionRunDuration   *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric against reg and returns the registry.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightsync_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 60, 300},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flightsync_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Store Metrics
		StoreOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_store_operations_total",
				Help: "Total schedule store operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		StoreOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightsync_store_operation_duration_seconds",
				Help:    "Schedule store operation time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Ingestion Metrics
		ProviderCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_provider_calls_total",
				Help: "Upstream provider calls by time slot and outcome",
			},
			[]string{"time_slot", "outcome"},
		),
		IngestionDaysTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_ingestion_days_total",
				Help: "Collected days by departure airport and outcome",
			},
			[]string{"departure_iata", "outcome"},
		),
		RecordsSavedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flightsync_records_saved_total",
				Help: "Schedule records persisted by departure airport",
			},
			[]string{"departure_iata"},
		),
		RecordsOverwrittenTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "flightsync_records_overwritten_with_changes_total",
				Help: "Saves that replaced an existing identity whose fields differed",
			},
		),
		CollectionRunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flightsync_collection_run_duration_seconds",
				Help:    "Monthly collection run time in seconds",
				Buckets: []float64{1, 10, 30, 60, 120, 180, 300, 600},
			},
			[]string{"departure_iata"},
		),
	}
}
