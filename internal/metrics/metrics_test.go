package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()

	assert.Same(t, first, second)
}

func TestCountersRecordWithoutPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		GenerationRunsTotal.Inc()
		FixturesProcessedTotal.Inc()
		PredictionRowsTotal.Add(42)
		RatingUpdatesTotal.Add(380)
		IngestionErrorsTotal.Inc()
		InsufficientDataTotal.Inc()
		APIRequestsTotal.WithLabelValues("odds", "200").Inc()
	})
}

func TestGaugesRecordWithoutPanic(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		value float64
	}{
		{name: "typical team count", value: 400},
		{name: "zero", value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				TeamsRated.Set(tt.value)
				HistoricalReferenceRecords.Set(tt.value)
			})
		})
	}
}

func TestHistogramsRecordWithoutPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		GenerationDuration.Observe(12.5)
		APIRequestDuration.Observe(0.2)
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}
