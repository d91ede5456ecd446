package usecase

import (
	"context"
	"testing"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

type templatesFake struct {
	base domain.Date
}

func (f *templatesFake) Seed(base domain.Date) domain.OnboardingSeed {
	f.base = base
	due := base.AddDays(3)
	return domain.OnboardingSeed{
		Tasks: []domain.TaskDraft{
			{ID: "tpl-1", Title: "Upload ID", Type: domain.TaskDocumentUpload, DueDate: &due},
		},
	}
}

func (f *templatesFake) DocumentChecklist() []domain.DocumentDraft {
	return []domain.DocumentDraft{{ID: "doc-1", Name: "Employment Contract", Required: true}}
}

func TestStartOnboardingFromTemplates(t *testing.T) {
	store := newTestOnboardingStore(newKVFake())
	templates := &templatesFake{}
	uc := NewStartOnboardingUseCase(store, templates, fixedClock(testNow))

	record, err := uc.StartOnboarding(context.Background(), "APP-1", "Engineering", "mgr-7")
	if err != nil {
		t.Fatalf("StartOnboarding() error = %v", err)
	}
	if templates.base.String() != "2026-03-01" {
		t.Fatalf("expected templates based on today, got %s", templates.base)
	}
	if record.Stage != domain.StageOfferAccepted {
		t.Fatalf("expected offer_accepted, got %s", record.Stage)
	}
	if record.ExpectedStartDate == nil || record.ExpectedStartDate.String() != "2026-03-15" {
		t.Fatalf("expected start in 14 days, got %v", record.ExpectedStartDate)
	}
	if record.AssignedDepartment != "Engineering" || record.AssignedManager != "mgr-7" {
		t.Fatalf("expected assignment metadata, got %+v", record)
	}
	if len(record.Tasks) != 1 || record.Tasks[0].DueDate.String() != "2026-03-04" {
		t.Fatalf("expected template task with relative due date, got %+v", record.Tasks)
	}
}

func TestStartOnboardingThenUpload(t *testing.T) {
	store := newTestOnboardingStore(newKVFake())
	uc := NewStartOnboardingUseCase(store, &templatesFake{}, fixedClock(testNow))
	ctx := context.Background()

	record, err := uc.StartOnboarding(ctx, "APP-1", "", "")
	if err != nil {
		t.Fatalf("StartOnboarding() error = %v", err)
	}
	if len(record.Documents) != 0 || len(record.OutstandingRequiredDocuments()) != 0 {
		t.Fatalf("start must not store document placeholders, got %+v", record.Documents)
	}

	checklist := uc.DocumentChecklist()
	if len(checklist) != 1 || checklist[0].ID != "doc-1" {
		t.Fatalf("unexpected checklist %+v", checklist)
	}
	upload := checklist[0]
	upload.Status = domain.DocumentPendingReview
	if _, err := store.AddDocument(ctx, "APP-1", upload); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if err := store.UpdateDocumentStatus(ctx, "APP-1", "doc-1", domain.DocumentRejected); err != nil {
		t.Fatalf("UpdateDocumentStatus() error = %v", err)
	}
	if _, err := store.AddDocument(ctx, "APP-1", upload); err != nil {
		t.Fatalf("re-upload error = %v", err)
	}

	record, err = store.GetOnboardingStatus(ctx, "APP-1")
	if err != nil {
		t.Fatalf("GetOnboardingStatus() error = %v", err)
	}
	if len(record.Documents) != 1 {
		t.Fatalf("uploads against one checklist entry must not duplicate it, got %+v", record.Documents)
	}
	doc := record.Documents[0]
	if doc.ID != "doc-1" || doc.Status != domain.DocumentPendingReview || doc.ReviewedAt != nil {
		t.Fatalf("expected fresh pending_review upload, got %+v", doc)
	}
	if got := record.Summary(testNow).OutstandingDocuments; got != 1 {
		t.Fatalf("expected one outstanding document until approval, got %d", got)
	}

	if err := store.UpdateDocumentStatus(ctx, "APP-1", "doc-1", domain.DocumentApproved); err != nil {
		t.Fatalf("UpdateDocumentStatus() error = %v", err)
	}
	_, err = store.AddDocument(ctx, "APP-1", upload)
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected approved document to reject re-upload, got %v", err)
	}
}
