package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker metrics
var (
	WorkerCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_analyzer_worker_cycles_total",
			Help: "Total number of poll cycles by outcome",
		},
		[]string{"outcome"}, // "drained", "empty", "backoff"
	)

	WorkerItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_analyzer_worker_items_total",
			Help: "Total number of items processed by final status",
		},
		[]string{"status"}, // moderation status or "failed"
	)

	WorkerItemDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vault_analyzer_worker_item_duration_seconds",
			Help:    "Time spent processing a single item end to end",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	WorkerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_analyzer_worker_state",
			Help: "Current worker state (0=idle, 1=fetching, 2=draining, 3=backoff)",
		},
	)

	WorkerLastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_analyzer_worker_last_cycle_timestamp",
			Help: "Timestamp of the last completed poll cycle",
		},
	)
)

// Analysis stage metrics
var (
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_analyzer_stage_duration_seconds",
			Help:    "Duration of individual analysis stages",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "metadata", "thumbnail", "caption", "safety"
	)

	StageDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_analyzer_stage_degradations_total",
			Help: "Total number of stage executions that fell back to a degraded result",
		},
		[]string{"stage"},
	)
)

// Catalog client metrics
var (
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_analyzer_catalog_requests_total",
			Help: "Total number of catalog API requests",
		},
		[]string{"operation", "status"}, // operation: "list_pending", "update_item"
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_analyzer_catalog_request_duration_seconds",
			Help:    "Catalog API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Classifier service metrics
var (
	ClassifierRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_analyzer_classifier_requests_total",
			Help: "Total number of classification requests",
		},
		[]string{"endpoint", "status"},
	)

	ClassifierInferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vault_analyzer_classifier_inference_duration_seconds",
			Help:    "Time spent preprocessing and scoring a single image",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ClassifierUnsafeVerdicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_analyzer_classifier_unsafe_verdicts_total",
			Help: "Total number of images classified as unsafe",
		},
	)

	ClassifierModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_analyzer_classifier_model_loaded",
			Help: "Whether a real model is loaded (1) or the service runs in mock mode (0)",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_analyzer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vault_analyzer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
