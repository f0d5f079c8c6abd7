package providers

import (
	"errors"
	"rld/internal/storage"
	"rld/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func useTestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncStoreOps("get", nil)
	m.ObserveStoreDuration("get", time.Millisecond)
	m.IncViolations("originality")
	m.IncConsequences("warning")
	m.IncRewards(3, "staked")
	m.IncLedgerErrors("record")
	m.IncGateDecisions("allowed")
	m.ObservePersistenceDuration(time.Millisecond)
	m.TrackStoreEntries(func() int64 { return 0 })
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)

	m.IncRequestsTotal("/status", 200)
	m.IncRequestsTotal("/status", 404)
	m.ObserveRequestDuration("/status", 5*time.Millisecond)
	m.IncStoreOps("get", nil)
	m.IncStoreOps("get", storage.ErrNotFound)
	m.IncStoreOps("incr", errors.New("boom"))
	m.IncViolations("identity_spoofing")
	m.IncConsequences("permanent_ban")
	m.IncRewards(5, "instant")
	m.IncLedgerErrors("status")
	m.IncGateDecisions("restricted")
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.TrackStoreEntries(func() int64 { return 42 })

	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["rld_store_operations_total"])
	assert.True(t, names["rld_rewards_quoted_total"])
	assert.True(t, names["rld_store_entries"])
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
