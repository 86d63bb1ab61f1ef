// Package metrics provides the centralized Prometheus registry for the
// prediction engine and its collectors.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GenerationRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "generation_runs_total",
		Help:      "Total number of prediction generation runs",
	})
	FixturesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "fixtures_processed_total",
		Help:      "Total number of fixtures processed by the assembler",
	})
	PredictionRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "prediction_rows_total",
		Help:      "Total number of prediction rows emitted",
	})
	RatingUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "rating_updates_total",
		Help:      "Total number of match results folded into ratings",
	})
	IngestionErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "ingestion_errors_total",
		Help:      "Total number of records skipped during ingestion",
	})
	InsufficientDataTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "insufficient_data_total",
		Help:      "Total number of rows flagged with insufficient reference data",
	})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_forecast",
		Name:      "api_requests_total",
		Help:      "Total number of upstream API requests by endpoint and status",
	}, []string{"endpoint", "status"})
)

// Gauge metrics
var (
	TeamsRated = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "teams_rated",
		Help:      "Number of teams with a current ELO rating",
	})
	HistoricalReferenceRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "historical_reference_records",
		Help:      "Number of historical odds records available as similarity references",
	})
	LastGenerationTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_forecast",
		Name:      "last_generation_timestamp_seconds",
		Help:      "Unix timestamp of the last completed generation run",
	})
)

// Histogram metrics
var (
	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "generation_duration_seconds",
		Help:      "Duration of prediction generation runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	APIRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_forecast",
		Name:      "api_request_duration_seconds",
		Help:      "Latency of upstream API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(GenerationRunsTotal)
		registry.MustRegister(FixturesProcessedTotal)
		registry.MustRegister(PredictionRowsTotal)
		registry.MustRegister(RatingUpdatesTotal)
		registry.MustRegister(IngestionErrorsTotal)
		registry.MustRegister(InsufficientDataTotal)
		registry.MustRegister(APIRequestsTotal)

		registry.MustRegister(TeamsRated)
		registry.MustRegister(HistoricalReferenceRecords)
		registry.MustRegister(LastGenerationTimestamp)

		registry.MustRegister(GenerationDuration)
		registry.MustRegister(APIRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
