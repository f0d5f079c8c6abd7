package providers

import (
	"context"
	"fmt"
	"rld/internal/storage"
	"rld/internal/structures"
	"time"
)

// NewStoreProvider builds the configured backend and wraps it with metrics
// instrumentation.
func NewStoreProvider(conf *structures.Config, logger Logger, clock storage.Clock, metrics MetricsProviderInterface) (storage.Store, error) {
	var backend storage.Store
	switch conf.Store.Backend {
	case "redis":
		rs, err := storage.NewRedisStore(conf.Store.Redis.Addr, conf.Store.Redis.Password, conf.Store.Redis.DB, conf.Ledger.StoreTimeout)
		if err != nil {
			return nil, err
		}
		logger.Infof(TypeStore, "Redis store connected: %s db=%d", conf.Store.Redis.Addr, conf.Store.Redis.DB)
		backend = rs
	case "memory", "":
		ms := storage.NewMemoryStore(conf.Store.Size, clock)
		logger.Infof(TypeStore, "Memory store initialized: %dMB", max(conf.Store.Size, 1))
		metrics.TrackStoreEntries(ms.EntryCount)
		backend = ms
	default:
		return nil, fmt.Errorf("unknown store backend %q", conf.Store.Backend)
	}
	return NewInstrumentedStore(backend, metrics), nil
}

// MetricsStore wraps a storage.Store and counts every operation by result.
type MetricsStore struct {
	inner   storage.Store
	metrics MetricsProviderInterface
}

func NewInstrumentedStore(inner storage.Store, metrics MetricsProviderInterface) storage.Store {
	return &MetricsStore{inner: inner, metrics: metrics}
}

func (s *MetricsStore) observe(op string, start time.Time, err error) {
	s.metrics.IncStoreOps(op, err)
	s.metrics.ObserveStoreDuration(op, time.Since(start))
}

func (s *MetricsStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	val, err := s.inner.Get(ctx, key)
	s.observe("get", start, err)
	return val, err
}

func (s *MetricsStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.SetWithExpiry(ctx, key, value, ttl)
	s.observe("set", start, err)
	return err
}

func (s *MetricsStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	start := time.Now()
	n, err := s.inner.Increment(ctx, key, ttl)
	s.observe("incr", start, err)
	return n, err
}

func (s *MetricsStore) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, keys...)
	s.observe("del", start, err)
	return err
}

func (s *MetricsStore) Push(ctx context.Context, key string, value []byte, limit int, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.Push(ctx, key, value, limit, ttl)
	s.observe("push", start, err)
	return err
}

func (s *MetricsStore) Range(ctx context.Context, key string) ([][]byte, error) {
	start := time.Now()
	vals, err := s.inner.Range(ctx, key)
	s.observe("range", start, err)
	return vals, err
}

func (s *MetricsStore) Close() error {
	return s.inner.Close()
}

func (s *MetricsStore) Unwrap() storage.Store {
	return s.inner
}
