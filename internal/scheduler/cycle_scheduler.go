package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/niyoseris/roller/internal/collector"
	"github.com/niyoseris/roller/internal/models"
	"github.com/niyoseris/roller/internal/storage"
)

// CycleScheduler periodically runs the trend collectors and starts a new
// session from the results. It only acts when no session is in progress, so
// a manual session is never interrupted.
type CycleScheduler struct {
	collectors *collector.Set
	store      *storage.SessionStore
	interval   time.Duration
	logger     *slog.Logger
	stopChan   chan struct{}
}

// NewCycleScheduler creates a new cycle scheduler
func NewCycleScheduler(collectors *collector.Set, store *storage.SessionStore, interval time.Duration, logger *slog.Logger) *CycleScheduler {
	return &CycleScheduler{
		collectors: collectors,
		store:      store,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *CycleScheduler) Start(ctx context.Context) {
	s.logger.Info("starting collection cycle scheduler", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately on start
	s.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.stopChan:
			s.logger.Info("cycle scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("cycle scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler
func (s *CycleScheduler) Stop() {
	close(s.stopChan)
}

func (s *CycleScheduler) runCycle(ctx context.Context) {
	s.store.Reload()
	switch s.store.State() {
	case models.StateRunning, models.StatePaused:
		s.logger.Debug("session in progress, skipping collection cycle")
		return
	}

	trends := s.collectors.CollectAll(ctx)
	if len(trends) == 0 {
		s.logger.Warn("collection cycle produced no trends")
		return
	}

	if s.store.StartNewSession(trends, nil, true) {
		s.logger.Info("collection cycle started session", "trends", len(trends))
	}
}
