package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/hris-onboarding/internal/core/ports"
)

type OverdueReport struct {
	Applicants   int
	OverdueTasks int
	Bottlenecks  []string
}

// OverdueSweep scans every onboarding record for overdue tasks and
// bottlenecked applicants.
type OverdueSweep struct {
	onboarding ports.OnboardingService
	logger     *slog.Logger
	now        func() time.Time
}

func NewOverdueSweep(onboarding ports.OnboardingService, logger *slog.Logger, now func() time.Time) *OverdueSweep {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &OverdueSweep{onboarding: onboarding, logger: logger, now: now}
}

func (s *OverdueSweep) Run(ctx context.Context) (OverdueReport, error) {
	records, err := s.onboarding.ListOnboarding(ctx)
	if err != nil {
		return OverdueReport{}, fmt.Errorf("list onboarding: %w", err)
	}

	now := s.now()
	report := OverdueReport{Applicants: len(records), Bottlenecks: []string{}}
	for _, record := range records {
		overdue := record.OverdueTasks(now)
		report.OverdueTasks += len(overdue)
		if record.IsBottleneck(now) {
			report.Bottlenecks = append(report.Bottlenecks, record.ApplicantID)
		}
		for _, task := range overdue {
			s.logger.Info("onboarding_task_overdue",
				"applicant_id", record.ApplicantID,
				"task_id", task.ID,
				"due_date", task.DueDate.String(),
			)
		}
	}
	return report, nil
}
