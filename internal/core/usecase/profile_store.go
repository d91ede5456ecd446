package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
)

const profileKeyPrefix = "applicant_profile:"

func profileKey(applicantID string) string {
	return profileKeyPrefix + applicantID
}

// ProfileStore owns one applicant profile per applicant id.
type ProfileStore struct {
	kv   ports.KeyValueStore
	opts storeOptions

	mu sync.Mutex
}

func NewProfileStore(kv ports.KeyValueStore, opts ...Option) *ProfileStore {
	return &ProfileStore{
		kv:   kv,
		opts: applyOptions(opts),
	}
}

func (s *ProfileStore) GetProfile(ctx context.Context, applicantID string) (*domain.ApplicantProfile, bool, error) {
	if err := requireApplicantID("get profile", applicantID); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, applicantID)
}

// UpdateProfile merges patch onto the stored profile (or an empty one) and
// persists the result.
func (s *ProfileStore) UpdateProfile(ctx context.Context, applicantID string, patch domain.ProfilePatch) (domain.ApplicantProfile, error) {
	if err := requireApplicantID("update profile", applicantID); err != nil {
		return domain.ApplicantProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load(ctx, applicantID)
	if err != nil {
		return domain.ApplicantProfile{}, err
	}
	next := domain.ApplicantProfile{ApplicantID: applicantID}
	if current != nil {
		next = *current
	}
	patch.Apply(&next)
	next.LastUpdated = s.opts.now()

	raw, err := json.Marshal(next)
	if err != nil {
		return domain.ApplicantProfile{}, fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Put(ctx, profileKey(applicantID), raw); err != nil {
		return domain.ApplicantProfile{}, fmt.Errorf("persist profile: %w", err)
	}

	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventProfileUpdated,
		ApplicantID: applicantID,
	})
	return next, nil
}

func (s *ProfileStore) CompletionPercentage(ctx context.Context, applicantID string) (int, error) {
	profile, _, err := s.GetProfile(ctx, applicantID)
	if err != nil {
		return 0, err
	}
	return profile.CompletionPercentage(), nil
}

func (s *ProfileStore) load(ctx context.Context, applicantID string) (*domain.ApplicantProfile, bool, error) {
	raw, found, err := s.kv.Get(ctx, profileKey(applicantID))
	if err != nil {
		return nil, false, fmt.Errorf("load profile: %w", err)
	}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return nil, false, nil
	}

	var profile *domain.ApplicantProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		s.opts.logger.Warn("profile_state_reset",
			"applicant_id", applicantID,
			"error", domain.WrapError(domain.ErrCorruptState, "decode profile", err),
		)
		return nil, false, nil
	}
	if profile == nil {
		return nil, false, nil
	}
	profile.ApplicantID = applicantID
	return profile, true, nil
}
