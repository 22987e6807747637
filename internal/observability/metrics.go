// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the detector.
type Metrics struct {
	// Discovery metrics
	MintsDiscovered prometheus.Counter
	FeedErrors      prometheus.Counter

	// Evaluation metrics
	EvaluationsTotal *prometheus.CounterVec
	OracleErrors     *prometheus.CounterVec
	OracleLatency    prometheus.Histogram

	// Persistence metrics
	RecordsPersisted prometheus.Counter
	PersistErrors    prometheus.Counter

	// Health metrics
	LastSuccessfulTick prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_detector"
	}

	return &Metrics{
		MintsDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "mints_discovered_total",
			Help:      "Total number of new token mints discovered",
		}),
		FeedErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "feed_errors_total",
			Help:      "Total number of transient feed poll failures",
		}),

		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "total",
			Help:      "Total number of completed evaluations by risk tier",
		}, []string{"tier"}),
		OracleErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "oracle_errors_total",
			Help:      "Total number of oracle failures by class",
		}, []string{"class"}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "oracle_latency_seconds",
			Help:      "Risk oracle assessment latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		RecordsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "records_persisted_total",
			Help:      "Total number of safe token records persisted",
		}),
		PersistErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "persist_errors_total",
			Help:      "Total number of record persistence failures",
		}),

		LastSuccessfulTick: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_tick_timestamp",
			Help:      "Unix timestamp of last completed detection tick",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEvaluation increments the evaluation counter for a tier.
func (m *Metrics) RecordEvaluation(tier string) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(tier).Inc()
}

// RecordOracleError increments the oracle error counter for a class.
func (m *Metrics) RecordOracleError(class string) {
	if m == nil {
		return
	}
	m.OracleErrors.WithLabelValues(class).Inc()
}

// ObserveOracleLatency records one assessment duration.
func (m *Metrics) ObserveOracleLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.OracleLatency.Observe(d.Seconds())
}

// TickCompleted updates the last successful tick gauge.
func (m *Metrics) TickCompleted() {
	if m == nil {
		return
	}
	m.LastSuccessfulTick.SetToCurrentTime()
}

// MintDiscovered adds to the discovered counter.
func (m *Metrics) MintDiscovered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MintsDiscovered.Add(float64(n))
}

// FeedError increments the feed error counter.
func (m *Metrics) FeedError() {
	if m == nil {
		return
	}
	m.FeedErrors.Inc()
}

// RecordPersisted increments the persisted records counter.
func (m *Metrics) RecordPersisted() {
	if m == nil {
		return
	}
	m.RecordsPersisted.Inc()
}

// PersistError increments the persistence failure counter.
func (m *Metrics) PersistError() {
	if m == nil {
		return
	}
	m.PersistErrors.Inc()
}
