package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"StockLens/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	lastClose       *prometheus.GaugeVec
	recommendations *prometheus.CounterVec
}

// New creates a recorder registered with the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_upstream_requests_total",
				Help: "Calls to market data providers by result",
			},
			[]string{"source", "operation", "result"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocklens_upstream_duration_seconds",
				Help:    "Latency of market data provider calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "operation"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocklens_last_close",
				Help: "Last close served for a ticker",
			},
			[]string{"ticker"},
		),
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_recommendations_total",
				Help: "Recommendations served by category",
			},
			[]string{"category"},
		),
	}
}

// RecordUpstream records one provider call.
func (r *Recorder) RecordUpstream(source, op string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.upstreamCalls.WithLabelValues(source, op, result).Inc()
	r.upstreamLatency.WithLabelValues(source, op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last close for a ticker.
func (r *Recorder) RecordLastClose(ticker string, price float64) {
	r.lastClose.WithLabelValues(ticker).Set(price)
}

// RecordRecommendation counts a served recommendation.
func (r *Recorder) RecordRecommendation(rec models.Recommendation) {
	r.recommendations.WithLabelValues(rec.String()).Inc()
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordUpstream(string, string, float64, error) {}
func (Noop) RecordError(string)                            {}
func (Noop) RecordLastClose(string, float64)               {}
func (Noop) RecordRecommendation(models.Recommendation)    {}
