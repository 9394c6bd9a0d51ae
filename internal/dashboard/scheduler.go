package dashboard

import (
	"context"
	"time"

	"datahub/internal/logger"
)

// Refresher is what the scheduler drives
type Refresher interface {
	Loading() bool
	Refresh(ctx context.Context) uint64
}

// Scheduler refreshes on a fixed interval. A tick is skipped while the
// previous refresh is still loading.
type Scheduler struct {
	target   Refresher
	interval time.Duration
	log      *logger.Logger
}

// NewScheduler creates a scheduler; a non-positive interval disables it
func NewScheduler(target Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		target:   target,
		interval: interval,
		log:      logger.Component("scheduler"),
	}
}

// Run ticks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("Periodic refresh disabled")
		return
	}

	s.log.Info("Periodic refresh started", map[string]interface{}{"interval": s.interval.String()})
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Periodic refresh stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick refreshes unless a refresh is in flight. It reports whether it did.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if s.target.Loading() {
		s.log.Debug("Previous refresh still loading, skipping tick")
		return false
	}
	s.target.Refresh(ctx)
	return true
}
