package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/horizon-colors/internal/colors"
)

// Runner performs one update run.
type Runner interface {
	RunOnce(ctx context.Context) (colors.Key, error)
}

// Scheduler triggers an update at every interval boundary of civil time
// (e.g. :00/:15/:30/:45 for 15 minutes).
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *gocron.Job
	runner    Runner
	minutes   int
	logger    *zap.Logger
}

// New creates a Scheduler whose boundaries are evaluated in loc.
func New(runner Runner, minutes int, loc *time.Location, logger *zap.Logger) *Scheduler {
	if minutes <= 0 || minutes > 60 {
		minutes = 15
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		runner:    runner,
		minutes:   minutes,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	job, err := s.scheduler.Cron(cronSpec(s.minutes)).Do(s.tick)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started",
		zap.Int("interval_minutes", s.minutes),
		zap.Time("next_run", job.NextRun()),
	)
	return nil
}

// Stop stops the scheduler and cancels any future jobs. A run in flight is
// left to finish.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// tick is the job body. A boundary that arrives while a run is still in
// flight is dropped.
func (s *Scheduler) tick() {
	key, err := s.runner.RunOnce(context.Background())
	switch {
	case errors.Is(err, colors.ErrUpdateInProgress):
		s.logger.Info("scheduled update skipped, previous run still in progress")
	case err != nil:
		s.logger.Warn("scheduled update failed", zap.Error(err))
	default:
		s.logger.Debug("scheduled update completed", zap.String("key", key.String()))
	}
}

// cronSpec returns a minute-field cron expression firing at every multiple
// of minutes past the hour. Uneven intervals restart at minute 0.
func cronSpec(minutes int) string {
	if minutes >= 60 {
		return "0 * * * *"
	}
	return fmt.Sprintf("*/%d * * * *", minutes)
}
