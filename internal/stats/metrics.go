package stats

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studiowebux/liftload/internal/types"
)

// Metrics exports run progress on a private Prometheus registry
type Metrics struct {
	registry *prometheus.Registry

	callsTotal     *prometheus.CounterVec
	attemptLatency *prometheus.HistogramVec
	batchesTotal   *prometheus.CounterVec
	gatesFired     *prometheus.CounterVec
}

// NewMetrics creates and registers the liftload collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftload_calls_total",
				Help: "Logical calls completed, by request type and result",
			},
			[]string{"request_type", "result"},
		),

		attemptLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "liftload_attempt_duration_seconds",
				Help:    "Latency of individual attempts that received a response",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"request_type", "code"},
		),

		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftload_batches_total",
				Help: "Batches completed, by phase and kind",
			},
			[]string{"phase", "kind"},
		),

		gatesFired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liftload_gates_fired_total",
				Help: "Phase gates fired, by phase",
			},
			[]string{"phase"},
		),
	}

	m.registry.MustRegister(m.callsTotal, m.attemptLatency, m.batchesTotal, m.gatesFired)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeCall(outcome types.Outcome) {
	result := "success"
	if !outcome.Success {
		result = "failure"
	}
	m.callsTotal.WithLabelValues(string(outcome.RequestType), result).Inc()
}

func (m *Metrics) observeSample(sample types.Sample) {
	m.attemptLatency.
		WithLabelValues(string(sample.RequestType), strconv.Itoa(sample.ResponseCode)).
		Observe(sample.Latency.Seconds())
}

func (m *Metrics) observeBatch(batch types.BatchOutcome) {
	m.batchesTotal.WithLabelValues(strconv.Itoa(batch.Phase), string(batch.Kind)).Inc()
}

// GateFired counts a fired gate for phase
func (m *Metrics) GateFired(phase int) {
	m.gatesFired.WithLabelValues(strconv.Itoa(phase)).Inc()
}
