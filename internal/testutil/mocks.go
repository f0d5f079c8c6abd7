package testutil

import (
	"context"
	"errors"
	"rld/internal/providers"
	"rld/internal/storage"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and keeps
// counters in maps.
type MockMetrics struct {
	mu           sync.Mutex
	Violations   map[string]int
	Consequences map[string]int
	Rewards      map[int]int
	LedgerErrors map[string]int
	Decisions    map[string]int
	Persisted    int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Violations:   make(map[string]int),
		Consequences: make(map[string]int),
		Rewards:      make(map[int]int),
		LedgerErrors: make(map[string]int),
		Decisions:    make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncStoreOps(_ string, _ error)                    {}
func (m *MockMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (m *MockMetrics) TrackStoreEntries(_ func() int64)                 {}

func (m *MockMetrics) IncViolations(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Violations[t]++
}

func (m *MockMetrics) IncConsequences(c string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Consequences[c]++
}

func (m *MockMetrics) IncRewards(tier int, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rewards[tier]++
}

func (m *MockMetrics) IncLedgerErrors(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LedgerErrors[op]++
}

func (m *MockMetrics) IncGateDecisions(d string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions[d]++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

// FakeClock is a storage.Clock that only moves when told to.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var ErrStoreDown = errors.New("store down")

// FailingStore wraps a store and fails selected operations with
// ErrStoreDown. With Inner nil every operation fails.
type FailingStore struct {
	Inner storage.Store
	mu    sync.Mutex
	fail  map[string]bool
	all   bool
}

func NewFailingStore(inner storage.Store, ops ...string) *FailingStore {
	fs := &FailingStore{Inner: inner, fail: make(map[string]bool)}
	if len(ops) == 0 {
		fs.all = true
	}
	for _, op := range ops {
		fs.fail[op] = true
	}
	return fs
}

func (f *FailingStore) fails(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Inner == nil || f.all || f.fail[op]
}

func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.fails("get") {
		return nil, ErrStoreDown
	}
	return f.Inner.Get(ctx, key)
}

func (f *FailingStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.fails("set") {
		return ErrStoreDown
	}
	return f.Inner.SetWithExpiry(ctx, key, value, ttl)
}

func (f *FailingStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.fails("incr") {
		return 0, ErrStoreDown
	}
	return f.Inner.Increment(ctx, key, ttl)
}

func (f *FailingStore) Delete(ctx context.Context, keys ...string) error {
	if f.fails("del") {
		return ErrStoreDown
	}
	return f.Inner.Delete(ctx, keys...)
}

func (f *FailingStore) Push(ctx context.Context, key string, value []byte, limit int, ttl time.Duration) error {
	if f.fails("push") {
		return ErrStoreDown
	}
	return f.Inner.Push(ctx, key, value, limit, ttl)
}

func (f *FailingStore) Range(ctx context.Context, key string) ([][]byte, error) {
	if f.fails("range") {
		return nil, ErrStoreDown
	}
	return f.Inner.Range(ctx, key)
}

func (f *FailingStore) Close() error { return nil }

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       int
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed++
}
