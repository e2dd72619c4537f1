package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backend API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fiberwatch_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Chart lifecycle metrics
	ChartRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_chart_renders_total",
			Help: "Total number of chart renders per slot",
		},
		[]string{"slot"},
	)

	ChartInstances = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fiberwatch_chart_instances",
			Help: "Number of live chart instances per slot",
		},
		[]string{"slot"},
	)

	// Polling and prediction metrics
	PollTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fiberwatch_poll_ticks_total",
			Help: "Total number of dashboard refresh ticks",
		},
	)

	StaleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_stale_responses_total",
			Help: "Responses discarded because a newer request was dispatched",
		},
		[]string{"stream"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiberwatch_predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeStatus    = "status_error"
	OutcomeDecode    = "decode_error"
)

// RecordAPIRequest records a backend request.
func RecordAPIRequest(endpoint, outcome string, duration float64) {
	APIRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordStale records a discarded out-of-date response.
func RecordStale(stream string) {
	StaleResponsesTotal.WithLabelValues(stream).Inc()
}
