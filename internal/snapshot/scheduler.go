package snapshot

import (
	"github.com/roylee0704/gron"
	"rld/internal/providers"
	"rld/internal/snapshot/interfaces"
	"rld/internal/structures"
	"sync"
	"time"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := max(s.config.Persistence.SaveInterval, time.Second)

	s.cron.AddFunc(gron.Every(interval), func() {
		_ = s.Persist()
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	n, err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Restored %d entries from %s", n, s.config.Persistence.FilePath)
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	n, err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.logger.Debugf(providers.TypeApp, "Persisted %d entries to file %s", n, s.config.Persistence.FilePath)
	return nil
}

// Close releases the compressor. Call it after the final Persist.
func (s *Scheduler) Close() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.fileManager.Close()
}

type noopScheduler struct {
	fileManager *FileManager
}

func (noopScheduler) Init()          {}
func (noopScheduler) Stop()          {}
func (noopScheduler) Restore() error { return nil }
func (noopScheduler) Persist() error { return nil }

func (n noopScheduler) Close() {
	if n.fileManager != nil {
		n.fileManager.Close()
	}
}

// NewScheduler returns a no-op scheduler when persistence is disabled or
// the store lives outside the process.
func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	if !config.Persistence.Enabled {
		return noopScheduler{fileManager: fileManager}
	}
	if !fileManager.Supported() {
		logger.Infof(providers.TypeApp, "Persistence skipped: %s backend keeps its own state", config.Store.Backend)
		return noopScheduler{fileManager: fileManager}
	}
	return &Scheduler{
		config:      config,
		logger:      logger,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
