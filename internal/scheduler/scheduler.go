// Package scheduler runs the batch report job on a cron schedule inside the
// web server.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sheetcalc/internal/infrastructure"
	"sheetcalc/internal/reports"
)

// BatchRunner is the job the scheduler triggers.
type BatchRunner interface {
	Run(ctx context.Context, opts reports.RunOptions) (reports.Summary, error)
}

// Scheduler triggers a BatchRunner on a five-field cron expression.
type Scheduler struct {
	cron     *cron.Cron
	runner   BatchRunner
	opts     reports.RunOptions
	schedule string
	entry    cron.EntryID
	metrics  *infrastructure.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New parses schedule and prepares the job. It does not start the clock.
func New(schedule string, runner BatchRunner, opts reports.RunOptions, metrics *infrastructure.Metrics, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		opts:     opts,
		schedule: schedule,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "scheduler"),
	}

	entry, err := s.cron.AddFunc(schedule, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	s.entry = entry
	return s, nil
}

// Start starts the cron clock. Jobs run with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()

	s.logger.InfoContext(ctx, "report scheduler started",
		slog.String("schedule", s.schedule),
		slog.Time("next_run", s.Next()))
	return nil
}

// Stop stops the clock, cancels a running job and waits for it to return.
// The lock is released before waiting so a job that is just firing can
// read its context and observe the cancellation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.mu.Unlock()

	cancel()
	<-s.cron.Stop().Done()

	s.logger.Info("report scheduler stopped")
}

// Next returns the next time the job will fire, or the zero time when the
// scheduler is not running.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// RunNow runs the job synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (reports.Summary, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	summary, err := s.runner.Run(ctx, s.opts)
	if err == nil && summary.Failed > 0 {
		err = fmt.Errorf("%d of %d workbooks failed", summary.Failed, len(summary.Results))
	}
	s.metrics.RecordScheduledRun(ctx, err)

	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled report run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return summary, err
	}
	s.logger.InfoContext(ctx, "scheduled report run completed",
		slog.Int("reports", summary.Succeeded),
		slog.Duration("duration", time.Since(start)))
	return summary, nil
}

func (s *Scheduler) runScheduled() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	_, _ = s.RunNow(ctx)
}
