package ports

import (
	"context"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

// KeyValueStore persists whole serialized values under string keys. Get
// reports found=false for keys never written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// EventPublisher announces persisted mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OnboardingEvent) error
}

// EventSubscriber consumes announced mutations until ctx is done.
type EventSubscriber interface {
	Subscribe(ctx context.Context, handler func(context.Context, domain.OnboardingEvent) error) error
}

// SeedTemplates provides the default task templates used when HR starts
// onboarding without an explicit seed, and the document upload checklist.
type SeedTemplates interface {
	Seed(base domain.Date) domain.OnboardingSeed
	DocumentChecklist() []domain.DocumentDraft
}

// DraftValidator checks caller drafts at the store boundary.
type DraftValidator interface {
	Struct(s any) error
}
