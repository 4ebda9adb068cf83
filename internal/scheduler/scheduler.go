// Package scheduler runs the batch jobs on cron schedules for serve mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/taskminder/internal/clock"
)

// JobFunc runs one batch at now.
type JobFunc func(ctx context.Context, now time.Time) error

// Scheduler wraps a cron runner. A job is never overlapped by its own next
// tick; a slow run makes the next tick a no-op.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	clock  clock.Clock
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(clk clock.Clock, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger = logger.With("component", "scheduler")
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		clock:  clk,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under name with a standard five-field spec or a
// descriptor such as "@hourly" or "@every 1m".
func (s *Scheduler) Add(name, spec string, job JobFunc) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return id, nil
}

func (s *Scheduler) wrap(name string, job JobFunc) func() {
	return func() {
		start := time.Now()
		now := s.clock.Now()
		if err := job(s.ctx, now); err != nil {
			s.logger.Error("job failed", "job", name, "error", err, "duration", time.Since(start))
			return
		}
		s.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	}
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the context passed to running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	done := s.cron.Stop()
	s.cancel()
	<-done.Done()
}

func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
