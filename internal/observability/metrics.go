package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unveiled_backend_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "unveiled_backend_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	AnalysisRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unveiled_backend_analysis_runs_total",
			Help: "Analysis runs by outcome",
		},
		[]string{"status"},
	)

	// Runs walk every showcased repository, so durations span seconds to
	// minutes; the default buckets stop at 10s.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "unveiled_backend_analysis_duration_seconds",
			Help:    "Wall time of completed analysis runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unveiled_backend_sse_clients",
			Help: "Currently connected SSE streams",
		},
	)
)
