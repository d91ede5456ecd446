package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
)

// ExpectedStartLeadDays is how far after approval the expected start date is
// placed.
const ExpectedStartLeadDays = 14

type StartOnboardingUseCase struct {
	onboarding ports.OnboardingService
	templates  ports.SeedTemplates
	now        func() time.Time
}

func NewStartOnboardingUseCase(onboarding ports.OnboardingService, templates ports.SeedTemplates, now func() time.Time) *StartOnboardingUseCase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &StartOnboardingUseCase{
		onboarding: onboarding,
		templates:  templates,
		now:        now,
	}
}

// StartOnboarding initializes the applicant from the default task templates
// with due dates relative to today.
func (uc *StartOnboardingUseCase) StartOnboarding(ctx context.Context, applicantID, department, manager string) (domain.OnboardingRecord, error) {
	today := domain.NewDate(uc.now())
	seed := uc.templates.Seed(today)
	expected := today.AddDays(ExpectedStartLeadDays)
	seed.ExpectedStartDate = &expected
	seed.AssignedDepartment = department
	seed.AssignedManager = manager

	if err := uc.onboarding.InitializeOnboarding(ctx, applicantID, seed); err != nil {
		return domain.OnboardingRecord{}, fmt.Errorf("start onboarding: %w", err)
	}
	return uc.onboarding.GetOnboardingStatus(ctx, applicantID)
}

// DocumentChecklist is what the applicant is expected to upload once
// onboarding has started.
func (uc *StartOnboardingUseCase) DocumentChecklist() []domain.DocumentDraft {
	return uc.templates.DocumentChecklist()
}
