package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"credval/internal/validation/models"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ProviderAttempts *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	ChainDepth       *prometheus.HistogramVec
	VerdictsIssued   *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ProviderAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credval_provider_attempts_total",
			Help: "Provider calls by capability, provider and outcome",
		}, []string{"capability", "provider", "outcome"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credval_provider_latency_seconds",
			Help:    "Latency of individual provider calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"capability", "provider"}),
		ChainDepth: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credval_chain_depth",
			Help:    "How many providers a successful chain consumed",
			Buckets: []float64{1, 2, 3},
		}, []string{"capability"}),
		VerdictsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credval_verdicts_total",
			Help: "Consolidated verdicts by result",
		}, []string{"result"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credval_stage_duration_seconds",
			Help:    "Duration of the OCR and validation stages",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

// ObserveAttempt records one provider call.
func (m *Metrics) ObserveAttempt(capability models.Capability, provider string, outcome models.Outcome, latency time.Duration) {
	m.ProviderAttempts.WithLabelValues(string(capability), provider, string(outcome)).Inc()
	m.ProviderLatency.WithLabelValues(string(capability), provider).Observe(latency.Seconds())
}

// ObserveChainDepth records how deep a successful chain went.
func (m *Metrics) ObserveChainDepth(capability models.Capability, depth int) {
	m.ChainDepth.WithLabelValues(string(capability)).Observe(float64(depth))
}

// ObserveVerdict counts a consolidated verdict.
func (m *Metrics) ObserveVerdict(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.VerdictsIssued.WithLabelValues(result).Inc()
}

// ObserveStage records a stage duration.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
