package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler periodically triggers reminder sweeps. Sweeps themselves
// are idempotent per day, so the loop can fire liberally; the sweep's
// dedup log keeps users from being nagged twice.
type Scheduler struct {
	mu       sync.RWMutex
	sweeper  *Sweeper
	interval time.Duration
	hour     int
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a scheduler that runs a sweep once per tick when
// the local hour has reached sendHour.
func NewScheduler(sweeper *Sweeper, sendHour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: 15 * time.Minute,
		hour:     sendHour,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if now.Hour() < s.hour {
		return
	}
	if _, err := s.sweeper.Sweep(ctx, now); err != nil {
		s.logger.Error("reminder sweep", "error", err)
	}
}
