package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"CryptoView/internal/usecase"
	"CryptoView/pkg/cache"
	applogger "CryptoView/pkg/logger"
)

// RefreshLockKey guards the periodic refresh across processes sharing a cache.
const RefreshLockKey = "lock:roster_refresh"

// Refresher is the roster operation driven by the refresh job.
type Refresher interface {
	TryRefresh(ctx context.Context) error
}

// Sweeper drops idle state and reports how many entries went away.
type Sweeper func() int

// Scheduler runs the periodic roster refresh and housekeeping jobs.
type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	roster   Refresher
	locker   cache.Service
	lockTTL  time.Duration
	sweepers map[string]Sweeper
	logger   *applogger.Logger
}

func New(ctx context.Context, roster Refresher, locker cache.Service, lockTTL time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		ctx:      ctx,
		roster:   roster,
		locker:   locker,
		lockTTL:  lockTTL,
		sweepers: map[string]Sweeper{},
		logger:   applogger.NewNop(),
	}
}

// SetLogger allows DI to inject a logger after construction.
func (s *Scheduler) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.logger = l
	}
}

// AddSweeper registers a housekeeping func run by the sweep job.
func (s *Scheduler) AddSweeper(name string, fn Sweeper) {
	s.sweepers[name] = fn
}

// Register adds the refresh and sweep jobs. An empty spec disables that job.
func (s *Scheduler) Register(refreshSpec, sweepSpec string) error {
	if refreshSpec != "" {
		if _, err := s.cron.AddFunc(refreshSpec, s.RefreshNow); err != nil {
			return fmt.Errorf("register refresh job: %w", err)
		}
	}
	if sweepSpec != "" {
		if _, err := s.cron.AddFunc(sweepSpec, s.SweepNow); err != nil {
			return fmt.Errorf("register sweep job: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RefreshNow runs one refresh unless another process or flow already is.
func (s *Scheduler) RefreshNow() {
	if s.locker != nil {
		ok, err := s.locker.TryLock(s.ctx, RefreshLockKey, s.lockTTL)
		if err != nil {
			s.logger.Warn("refresh lock failed", applogger.Error(err))
			return
		}
		if !ok {
			s.logger.Debug("refresh skipped, lock held elsewhere")
			return
		}
		defer func() { _ = s.locker.Unlock(s.ctx, RefreshLockKey) }()
	}

	err := s.roster.TryRefresh(s.ctx)
	switch {
	case errors.Is(err, usecase.ErrBusy):
		s.logger.Debug("refresh skipped, roster busy")
	case err != nil:
		s.logger.Error("scheduled refresh failed", applogger.Error(err))
	}
}

// SweepNow runs every registered sweeper once.
func (s *Scheduler) SweepNow() {
	for name, fn := range s.sweepers {
		if n := fn(); n > 0 {
			s.logger.Debug("swept idle state",
				applogger.String("sweeper", name),
				applogger.Int("count", n),
			)
		}
	}
}
