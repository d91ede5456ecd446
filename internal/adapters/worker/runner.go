package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/core/usecase"
	"github.com/kirillkom/hris-onboarding/internal/observability/metrics"
)

const (
	serviceName  = "worker"
	sweepTimeout = 5 * time.Minute
)

type Sweeper interface {
	Run(ctx context.Context) (usecase.OverdueReport, error)
}

// Runner consumes onboarding events and runs the overdue sweep on a cron
// schedule.
type Runner struct {
	sweep   Sweeper
	metrics *metrics.WorkerMetrics
	logger  *slog.Logger
	now     func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewRunner(sweep Sweeper, m *metrics.WorkerMetrics, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		sweep:   sweep,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent is the subscriber callback. Events are informational, so it
// only counts and logs them.
func (r *Runner) HandleEvent(_ context.Context, event domain.OnboardingEvent) error {
	lag := time.Duration(-1)
	if !event.OccurredAt.IsZero() {
		lag = r.now().Sub(event.OccurredAt)
	}
	if r.metrics != nil {
		r.metrics.RecordEvent(serviceName, string(event.Type), lag)
	}
	r.logger.Info("onboarding_event_received",
		"event_id", event.ID,
		"type", event.Type,
		"applicant_id", event.ApplicantID,
		"stage", event.Stage,
		"task_id", event.TaskID,
		"document_id", event.DocumentID,
	)
	return nil
}

// Sweep runs one overdue sweep and exports its result.
func (r *Runner) Sweep(ctx context.Context) (usecase.OverdueReport, error) {
	start := time.Now()
	report, err := r.sweep.Run(ctx)
	if r.metrics != nil {
		r.metrics.RecordSweep(serviceName, time.Since(start), report.Applicants, report.OverdueTasks, len(report.Bottlenecks), err)
	}
	if err != nil {
		r.logger.Error("overdue_sweep_failed", "error", err)
		return report, err
	}
	r.logger.Info("overdue_sweep_completed",
		"applicants", report.Applicants,
		"overdue_tasks", report.OverdueTasks,
		"bottlenecks", report.Bottlenecks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// Start schedules the sweep with a standard five-field cron expression or a
// descriptor such as "@every 15m".
func (r *Runner) Start(ctx context.Context, schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return fmt.Errorf("sweep scheduler already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		defer cancel()
		_, _ = r.Sweep(sweepCtx)
	}); err != nil {
		return fmt.Errorf("schedule overdue sweep %q: %w", schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("overdue_sweep_scheduled", "schedule", schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}
