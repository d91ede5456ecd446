package ports

import (
	"context"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

// ProfileService is the inbound contract for applicant profile maintenance.
type ProfileService interface {
	GetProfile(ctx context.Context, applicantID string) (*domain.ApplicantProfile, bool, error)
	UpdateProfile(ctx context.Context, applicantID string, patch domain.ProfilePatch) (domain.ApplicantProfile, error)
	CompletionPercentage(ctx context.Context, applicantID string) (int, error)
}

// StageOption tunes a single stage update.
type StageOption func(*StageOptions)

type StageOptions struct {
	Strict bool
}

// WithStrictTransitions rejects moves to an earlier stage.
func WithStrictTransitions() StageOption {
	return func(o *StageOptions) { o.Strict = true }
}

// WithStrict sets strict mode explicitly, for callers passing a request flag.
func WithStrict(strict bool) StageOption {
	return func(o *StageOptions) { o.Strict = strict }
}

// OnboardingService is the inbound contract for onboarding record mutation.
type OnboardingService interface {
	GetOnboardingStatus(ctx context.Context, applicantID string) (domain.OnboardingRecord, error)
	ListOnboarding(ctx context.Context) ([]domain.OnboardingRecord, error)
	UpdateOnboardingStage(ctx context.Context, applicantID string, stage domain.Stage, opts ...StageOption) error
	AddTask(ctx context.Context, applicantID string, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, applicantID, taskID string, patch domain.TaskPatch) error
	AddDocument(ctx context.Context, applicantID string, draft domain.DocumentDraft) (domain.Document, error)
	UpdateDocumentStatus(ctx context.Context, applicantID, documentID string, status domain.DocumentStatus) error
	InitializeOnboarding(ctx context.Context, applicantID string, seed domain.OnboardingSeed) error
	MergeOnboardingSeed(ctx context.Context, applicantID string, seed domain.OnboardingSeed) error
}

// OnboardingStarter is the HR approval flow: initialize from templates.
type OnboardingStarter interface {
	StartOnboarding(ctx context.Context, applicantID, department, manager string) (domain.OnboardingRecord, error)
	DocumentChecklist() []domain.DocumentDraft
}
