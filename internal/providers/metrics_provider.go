package providers

import (
	"errors"
	"rld/internal/storage"
	"rld/internal/structures"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncStoreOps(op string, err error)
	ObserveStoreDuration(op string, duration time.Duration)
	IncViolations(violationType string)
	IncConsequences(consequence string)
	IncRewards(tier int, mode string)
	IncLedgerErrors(op string)
	IncGateDecisions(decision string)
	ObservePersistenceDuration(duration time.Duration)
	TrackStoreEntries(count func() int64)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	storeOps            *prometheus.CounterVec
	storeDuration       *prometheus.HistogramVec
	violations          *prometheus.CounterVec
	consequences        *prometheus.CounterVec
	rewards             *prometheus.CounterVec
	ledgerErrors        *prometheus.CounterVec
	gateDecisions       *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncStoreOps(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, storage.ErrNotFound):
		result = "miss"
	case err != nil:
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

func (m *MetricsProvider) ObserveStoreDuration(op string, duration time.Duration) {
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncViolations(violationType string) {
	m.violations.WithLabelValues(violationType).Inc()
}

func (m *MetricsProvider) IncConsequences(consequence string) {
	m.consequences.WithLabelValues(consequence).Inc()
}

func (m *MetricsProvider) IncRewards(tier int, mode string) {
	m.rewards.WithLabelValues(strconv.Itoa(tier), mode).Inc()
}

func (m *MetricsProvider) IncLedgerErrors(op string) {
	m.ledgerErrors.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) IncGateDecisions(decision string) {
	m.gateDecisions.WithLabelValues(decision).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func (m *MetricsProvider) TrackStoreEntries(count func() int64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rld_store_entries",
		Help: "Current number of live entries in the in-memory store",
	}, func() float64 {
		return float64(count())
	})
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rld_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		storeOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_store_operations_total",
			Help: "Key-value store operations by result",
		}, []string{"op", "result"}),

		storeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rld_store_operation_duration_seconds",
			Help:    "Key-value store operation duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2},
		}, []string{"op"}),

		violations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_violations_total",
			Help: "Recorded violations by type",
		}, []string{"type"}),

		consequences: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_consequences_total",
			Help: "Consequences applied by the escalation ladder",
		}, []string{"consequence"}),

		rewards: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_rewards_quoted_total",
			Help: "Reward quotes by tier and mode",
		}, []string{"tier", "mode"}),

		ledgerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_ledger_soft_errors_total",
			Help: "Ledger operations that degraded because the store failed",
		}, []string{"op"}),

		gateDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rld_gate_decisions_total",
			Help: "Engagement admission decisions",
		}, []string{"decision"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rld_persistence_duration_seconds",
			Help:    "Duration of snapshot operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncStoreOps(_ string, _ error)                    {}
func (n *noopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncViolations(_ string)                           {}
func (n *noopMetrics) IncConsequences(_ string)                         {}
func (n *noopMetrics) IncRewards(_ int, _ string)                       {}
func (n *noopMetrics) IncLedgerErrors(_ string)                         {}
func (n *noopMetrics) IncGateDecisions(_ string)                        {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) TrackStoreEntries(_ func() int64)                 {}
