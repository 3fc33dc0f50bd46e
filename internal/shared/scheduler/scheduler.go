package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/oops"
)

// Scheduler wraps cron-based background jobs
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler whose jobs never overlap with themselves and
// whose panics are logged instead of crashing the process.
func New() *Scheduler {
	logger := slogLogger{logger: slog.Default().With("component", "scheduler")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// ScheduleInterval registers job to run every interval.
func (s *Scheduler) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, oops.With("interval", interval).Errorf("interval must be at least one second")
	}
	return s.cron.AddFunc("@every "+interval.Truncate(time.Second).String(), job)
}

// Entries reports how many jobs are registered
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("Scheduler stopped before running jobs finished")
	}
}

// slogLogger adapts slog to cron.Logger
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
