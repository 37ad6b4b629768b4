package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Refresher is satisfied by *dashboard.Session.
type Refresher interface {
	Refresh() bool
}

// Scheduler periodically refreshes the dashboard's current coordinate.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. An interval <= 0 disables the job.
func New(target Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: refresh disabled")
		return nil
	}

	// The first run would race the startup positioning, so wait one interval.
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) run() {
	runID := uuid.NewString()
	if s.target.Refresh() {
		s.logger.Info("scheduler: refresh started", zap.String("run_id", runID))
		return
	}
	s.logger.Debug("scheduler: refresh skipped, session busy or unlocated", zap.String("run_id", runID))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
