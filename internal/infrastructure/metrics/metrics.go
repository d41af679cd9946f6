package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadstock_training_runs_total",
			Help: "Total number of risk model training runs by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deadstock_training_duration_seconds",
			Help:    "Duration of risk model training runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TrainingSamples = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deadstock_training_samples",
			Help: "Number of products the served model was trained on",
		},
	)

	ProductsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deadstock_products_scored_total",
			Help: "Total number of product scores computed",
		},
	)

	HighRiskProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "deadstock_high_risk_products",
			Help: "Number of products in the HIGH bucket on the latest scoring pass",
		},
	)

	LoaderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadstock_loader_fallbacks_total",
			Help: "Total number of loads served by a fallback source",
		},
		[]string{"source"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "deadstock_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadstock_circuit_breaker_requests_total",
			Help: "Total requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CacheLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadstock_product_cache_total",
			Help: "Product cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "stale"
	)
)

// Recorder reports use case outcomes to the package metrics.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// TrainingSucceeded records a successful training run.
func (Recorder) TrainingSucceeded(d time.Duration, samples int) {
	TrainingRuns.WithLabelValues("success").Inc()
	TrainingDuration.Observe(d.Seconds())
	TrainingSamples.Set(float64(samples))
}

// TrainingFailed records a failed training run.
func (Recorder) TrainingFailed(d time.Duration) {
	TrainingRuns.WithLabelValues("failure").Inc()
	TrainingDuration.Observe(d.Seconds())
}

// ProductsScored records one scoring pass.
func (Recorder) ProductsScored(total, high int) {
	ProductsScored.Add(float64(total))
	HighRiskProducts.Set(float64(high))
}
