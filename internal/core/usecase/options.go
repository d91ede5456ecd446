package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
)

type Option func(*storeOptions)

type storeOptions struct {
	logger       *slog.Logger
	events       ports.EventPublisher
	now          func() time.Time
	newID        func() string
	strictStages bool
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func applyOptions(opts []Option) storeOptions {
	out := defaultStoreOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithEventPublisher(events ports.EventPublisher) Option {
	return func(o *storeOptions) { o.events = events }
}

func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *storeOptions) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithStrictStagesByDefault makes every stage update strict unless the caller
// passes ports.WithStrict(false).
func WithStrictStagesByDefault(strict bool) Option {
	return func(o *storeOptions) { o.strictStages = strict }
}

// publish is best effort: the mutation is already persisted.
func (o storeOptions) publish(ctx context.Context, event domain.OnboardingEvent) {
	if o.events == nil {
		return
	}
	event.ID = o.newID()
	event.OccurredAt = o.now()
	if err := o.events.Publish(ctx, event); err != nil {
		o.logger.Warn("event_publish_failed",
			"event_type", string(event.Type),
			"applicant_id", event.ApplicantID,
			"error", err,
		)
	}
}

func requireApplicantID(operation, applicantID string) error {
	if strings.TrimSpace(applicantID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, operation, fmt.Errorf("applicant id is required"))
	}
	return nil
}
