package domain

import "time"

type EventType string

const (
	EventOnboardingInitialized EventType = "onboarding.initialized"
	EventOnboardingReseeded    EventType = "onboarding.reseeded"
	EventStageUpdated          EventType = "onboarding.stage_updated"
	EventTaskAdded             EventType = "onboarding.task_added"
	EventTaskUpdated           EventType = "onboarding.task_updated"
	EventDocumentAdded         EventType = "onboarding.document_added"
	EventDocumentReviewed      EventType = "onboarding.document_reviewed"
	EventProfileUpdated        EventType = "profile.updated"
)

// OnboardingEvent is emitted after a store mutation has been persisted.
type OnboardingEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ApplicantID string    `json:"applicant_id"`
	Stage       Stage     `json:"stage,omitempty"`
	TaskID      string    `json:"task_id,omitempty"`
	DocumentID  string    `json:"document_id,omitempty"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
