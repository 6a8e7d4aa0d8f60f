// Package scheduler re-runs the sync pipeline on a cron schedule while the
// API is serving.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/albapepper/soccerscore/internal/cache"
	"github.com/albapepper/soccerscore/internal/seed"
)

// ErrAlreadyRunning is returned by RunOnce while another run is in progress.
var ErrAlreadyRunning = errors.New("sync already running")

// Runner runs a full sync.
type Runner interface {
	Run(ctx context.Context) (seed.Result, error)
}

// Scheduler triggers Runner on a cron expression. At most one run is active
// at a time; ticks that arrive during a run are dropped.
type Scheduler struct {
	schedule string
	runner   Runner
	cache    cache.Cache
	logger   *slog.Logger
	cron     *cron.Cron
	running  atomic.Bool
}

// New validates schedule (standard five-field cron syntax or a descriptor such
// as "@every 6h"). c may be nil when response caching is off.
func New(schedule string, runner Runner, c cache.Cache, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse sync schedule %q: %w", schedule, err)
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		schedule: schedule,
		runner:   runner,
		cache:    c,
		logger:   logger,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}, nil
}

// Start schedules the sync job and returns immediately. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error("Scheduled sync failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Sync scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
	}
	s.logger.Info("Sync scheduler stopped")
}

// RunOnce runs a full sync and flushes the response cache whenever the run
// wrote documents, including a run that failed part way.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Sync skipped, previous run still in progress")
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	result, err := s.runner.Run(ctx)
	if result.Upserted() > 0 && s.cache != nil {
		if ferr := s.cache.Flush(ctx); ferr != nil {
			s.logger.Warn("Failed to flush response cache", "error", ferr)
		}
	}
	if err != nil {
		return fmt.Errorf("sync run: %w", err)
	}
	s.logger.Info("Scheduled sync complete", "summary", result.Summary())
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
