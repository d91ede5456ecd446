package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
)

// onboardingKey holds every applicant's record as one JSON object keyed by
// applicant id.
const onboardingKey = "onboardingData"

// OnboardingStore owns the onboarding record of every applicant. All
// read-modify-write cycles are serialized by mu so concurrent mutations of
// different applicants never drop each other's changes.
type OnboardingStore struct {
	kv        ports.KeyValueStore
	validator ports.DraftValidator
	opts      storeOptions

	mu sync.Mutex
}

func NewOnboardingStore(kv ports.KeyValueStore, validator ports.DraftValidator, opts ...Option) *OnboardingStore {
	return &OnboardingStore{
		kv:        kv,
		validator: validator,
		opts:      applyOptions(opts),
	}
}

func (s *OnboardingStore) GetOnboardingStatus(ctx context.Context, applicantID string) (domain.OnboardingRecord, error) {
	if err := requireApplicantID("get onboarding status", applicantID); err != nil {
		return domain.OnboardingRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadAll(ctx)
	if err != nil {
		return domain.OnboardingRecord{}, err
	}
	if record, ok := records[applicantID]; ok {
		return record, nil
	}
	return domain.DefaultOnboardingRecord(applicantID), nil
}

// ListOnboarding returns every stored record ordered by applicant id.
func (s *OnboardingStore) ListOnboarding(ctx context.Context) ([]domain.OnboardingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OnboardingRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApplicantID < out[j].ApplicantID })
	return out, nil
}

func (s *OnboardingStore) UpdateOnboardingStage(ctx context.Context, applicantID string, stage domain.Stage, opts ...ports.StageOption) error {
	if !stage.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "update stage", fmt.Errorf("unknown stage %q", stage))
	}
	options := ports.StageOptions{Strict: s.opts.strictStages}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	_, err := s.mutate(ctx, "update stage", applicantID, func(record *domain.OnboardingRecord, _ bool) (bool, error) {
		if options.Strict {
			if err := domain.CheckForward(record.Stage, stage); err != nil {
				return false, err
			}
		}
		record.Stage = stage
		return true, nil
	})
	if err != nil {
		return err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventStageUpdated,
		ApplicantID: applicantID,
		Stage:       stage,
	})
	return nil
}

// AddTask appends a new task with a generated id. A missing status becomes
// pending.
func (s *OnboardingStore) AddTask(ctx context.Context, applicantID string, draft domain.TaskDraft) (domain.Task, error) {
	if err := s.validate("add task", draft); err != nil {
		return domain.Task{}, err
	}
	draft.ID = ""
	var task domain.Task
	_, err := s.mutate(ctx, "add task", applicantID, func(record *domain.OnboardingRecord, _ bool) (bool, error) {
		task = s.newTask(draft)
		record.Tasks = append(record.Tasks, task)
		return true, nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventTaskAdded,
		ApplicantID: applicantID,
		TaskID:      task.ID,
		Status:      string(task.Status),
	})
	return task, nil
}

// UpdateTask merges patch into the matching task. An unknown task id leaves
// the record untouched and is not an error.
func (s *OnboardingStore) UpdateTask(ctx context.Context, applicantID, taskID string, patch domain.TaskPatch) error {
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "update task", fmt.Errorf("unknown task status %q", patch.Status.Value))
	}
	if patch.Priority.Set && patch.Priority.Value != "" && !patch.Priority.Value.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "update task", fmt.Errorf("unknown task priority %q", patch.Priority.Value))
	}

	var updated domain.Task
	changed, err := s.mutate(ctx, "update task", applicantID, func(record *domain.OnboardingRecord, _ bool) (bool, error) {
		idx := record.TaskIndex(taskID)
		if idx < 0 {
			return false, nil
		}
		patch.Apply(&record.Tasks[idx], s.opts.now())
		updated = record.Tasks[idx]
		return true, nil
	})
	if err != nil || !changed {
		return err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventTaskUpdated,
		ApplicantID: applicantID,
		TaskID:      updated.ID,
		Status:      string(updated.Status),
	})
	return nil
}

// AddDocument records an upload stamped with now. A draft whose id matches a
// stored document that is not yet approved replaces it in place, so uploads
// against a checklist entry or re-uploads after a rejection never duplicate
// it. Otherwise the document is appended, keeping a caller id or getting a
// generated one.
func (s *OnboardingStore) AddDocument(ctx context.Context, applicantID string, draft domain.DocumentDraft) (domain.Document, error) {
	if err := s.validate("add document", draft); err != nil {
		return domain.Document{}, err
	}
	draft.ID = strings.TrimSpace(draft.ID)
	var doc domain.Document
	_, err := s.mutate(ctx, "add document", applicantID, func(record *domain.OnboardingRecord, _ bool) (bool, error) {
		uploadedAt := s.opts.now()
		draft.UploadedAt = &uploadedAt
		doc = s.newDocument(draft)

		idx := -1
		if draft.ID != "" {
			idx = record.DocumentIndex(draft.ID)
		}
		if idx < 0 {
			record.Documents = append(record.Documents, doc)
			return true, nil
		}
		if record.Documents[idx].Status == domain.DocumentApproved {
			return false, domain.WrapError(domain.ErrInvalidTransition, "add document",
				fmt.Errorf("document %q is already approved", draft.ID))
		}
		record.Documents[idx] = doc
		return true, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventDocumentAdded,
		ApplicantID: applicantID,
		DocumentID:  doc.ID,
		Status:      string(doc.Status),
	})
	return doc, nil
}

// UpdateDocumentStatus sets the status and review time of the matching
// document. An unknown document id is a no-op.
func (s *OnboardingStore) UpdateDocumentStatus(ctx context.Context, applicantID, documentID string, status domain.DocumentStatus) error {
	if !status.Valid() {
		return domain.WrapError(domain.ErrInvalidInput, "update document status", fmt.Errorf("unknown document status %q", status))
	}
	changed, err := s.mutate(ctx, "update document status", applicantID, func(record *domain.OnboardingRecord, _ bool) (bool, error) {
		idx := record.DocumentIndex(documentID)
		if idx < 0 {
			return false, nil
		}
		reviewedAt := s.opts.now()
		record.Documents[idx].Status = status
		record.Documents[idx].ReviewedAt = &reviewedAt
		return true, nil
	})
	if err != nil || !changed {
		return err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventDocumentReviewed,
		ApplicantID: applicantID,
		DocumentID:  documentID,
		Status:      string(status),
	})
	return nil
}

// InitializeOnboarding replaces the applicant's record with one built from
// seed, at stage offer_accepted.
func (s *OnboardingStore) InitializeOnboarding(ctx context.Context, applicantID string, seed domain.OnboardingSeed) error {
	if err := s.validateSeed("initialize onboarding", seed); err != nil {
		return err
	}
	_, err := s.mutate(ctx, "initialize onboarding", applicantID, func(record *domain.OnboardingRecord, _ bool) (bool, error) {
		*record = s.recordFromSeed(applicantID, seed)
		return true, nil
	})
	if err != nil {
		return err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventOnboardingInitialized,
		ApplicantID: applicantID,
		Stage:       domain.StageOfferAccepted,
	})
	return nil
}

// MergeOnboardingSeed adds seed content to an existing record without
// discarding progress: known task and document ids are kept as stored, new
// ones are appended, metadata is only filled where the seed carries it and
// the stage is raised to offer_accepted but never lowered. Without a stored
// record it behaves like InitializeOnboarding.
func (s *OnboardingStore) MergeOnboardingSeed(ctx context.Context, applicantID string, seed domain.OnboardingSeed) error {
	if err := s.validateSeed("merge onboarding seed", seed); err != nil {
		return err
	}
	var stage domain.Stage
	_, err := s.mutate(ctx, "merge onboarding seed", applicantID, func(record *domain.OnboardingRecord, exists bool) (bool, error) {
		if !exists {
			*record = s.recordFromSeed(applicantID, seed)
			stage = record.Stage
			return true, nil
		}
		for _, draft := range seed.Tasks {
			if draft.ID != "" && record.TaskIndex(draft.ID) >= 0 {
				continue
			}
			record.Tasks = append(record.Tasks, s.newTask(draft))
		}
		for _, draft := range seed.Documents {
			if draft.ID != "" && record.DocumentIndex(draft.ID) >= 0 {
				continue
			}
			record.Documents = append(record.Documents, s.newDocument(draft))
		}
		if record.Stage.Index() < domain.StageOfferAccepted.Index() {
			record.Stage = domain.StageOfferAccepted
		}
		if seed.StartDate != nil {
			record.StartDate = seed.StartDate
		}
		if seed.ExpectedStartDate != nil {
			record.ExpectedStartDate = seed.ExpectedStartDate
		}
		if seed.AssignedDepartment != "" {
			record.AssignedDepartment = seed.AssignedDepartment
		}
		if seed.AssignedManager != "" {
			record.AssignedManager = seed.AssignedManager
		}
		stage = record.Stage
		return true, nil
	})
	if err != nil {
		return err
	}
	s.opts.publish(ctx, domain.OnboardingEvent{
		Type:        domain.EventOnboardingReseeded,
		ApplicantID: applicantID,
		Stage:       stage,
	})
	return nil
}

// mutate loads every record, hands a copy of the applicant's record (or the
// default) to fn and persists the whole set when fn reports a change. The
// stored state is only replaced after fn succeeds.
func (s *OnboardingStore) mutate(
	ctx context.Context,
	operation string,
	applicantID string,
	fn func(record *domain.OnboardingRecord, exists bool) (bool, error),
) (bool, error) {
	if err := requireApplicantID(operation, applicantID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadAll(ctx)
	if err != nil {
		return false, err
	}
	current, exists := records[applicantID]
	if !exists {
		current = domain.DefaultOnboardingRecord(applicantID)
	}

	next := current.Clone()
	changed, err := fn(&next, exists)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	now := s.opts.now()
	next.ApplicantID = applicantID
	next.UpdatedAt = &now
	records[applicantID] = next

	if err := s.saveAll(ctx, records); err != nil {
		return false, err
	}
	return true, nil
}

func (s *OnboardingStore) loadAll(ctx context.Context) (map[string]domain.OnboardingRecord, error) {
	raw, found, err := s.kv.Get(ctx, onboardingKey)
	if err != nil {
		return nil, fmt.Errorf("load onboarding data: %w", err)
	}
	records := make(map[string]domain.OnboardingRecord)
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return records, nil
	}

	var decoded map[string]domain.OnboardingRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.opts.logger.Warn("onboarding_state_reset",
			"error", domain.WrapError(domain.ErrCorruptState, "decode onboarding data", err),
		)
		return records, nil
	}
	for applicantID, record := range decoded {
		record.ApplicantID = applicantID
		if record.Tasks == nil {
			record.Tasks = []domain.Task{}
		}
		if record.Documents == nil {
			record.Documents = []domain.Document{}
		}
		records[applicantID] = record
	}
	return records, nil
}

func (s *OnboardingStore) saveAll(ctx context.Context, records map[string]domain.OnboardingRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode onboarding data: %w", err)
	}
	if err := s.kv.Put(ctx, onboardingKey, raw); err != nil {
		return fmt.Errorf("persist onboarding data: %w", err)
	}
	return nil
}

func (s *OnboardingStore) validate(operation string, v any) error {
	if s.validator == nil {
		return nil
	}
	if err := s.validator.Struct(v); err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return err
		}
		return domain.WrapError(domain.ErrInvalidInput, operation, err)
	}
	return nil
}

func (s *OnboardingStore) validateSeed(operation string, seed domain.OnboardingSeed) error {
	if err := s.validate(operation, seed); err != nil {
		return err
	}
	if err := seed.CheckIDs(); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, operation, err)
	}
	return nil
}

func (s *OnboardingStore) recordFromSeed(applicantID string, seed domain.OnboardingSeed) domain.OnboardingRecord {
	now := s.opts.now()
	record := domain.OnboardingRecord{
		ApplicantID:        applicantID,
		Stage:              domain.StageOfferAccepted,
		Tasks:              make([]domain.Task, 0, len(seed.Tasks)),
		Documents:          make([]domain.Document, 0, len(seed.Documents)),
		StartDate:          seed.StartDate,
		ExpectedStartDate:  seed.ExpectedStartDate,
		AssignedDepartment: seed.AssignedDepartment,
		AssignedManager:    seed.AssignedManager,
		CreatedAt:          &now,
	}
	for _, draft := range seed.Tasks {
		record.Tasks = append(record.Tasks, s.newTask(draft))
	}
	for _, draft := range seed.Documents {
		record.Documents = append(record.Documents, s.newDocument(draft))
	}
	return record
}

func (s *OnboardingStore) newTask(draft domain.TaskDraft) domain.Task {
	task := domain.Task{
		ID:          draft.ID,
		Title:       draft.Title,
		Description: draft.Description,
		Type:        draft.Type,
		Status:      draft.Status,
		Priority:    draft.Priority,
		ActionLabel: draft.ActionLabel,
		DueDate:     draft.DueDate,
		AssignedBy:  draft.AssignedBy,
		CreatedAt:   s.opts.now(),
	}
	if task.ID == "" {
		task.ID = s.opts.newID()
	}
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	if task.Status == domain.TaskCompleted {
		completedAt := task.CreatedAt
		task.CompletedAt = &completedAt
	}
	return task
}

func (s *OnboardingStore) newDocument(draft domain.DocumentDraft) domain.Document {
	doc := domain.Document{
		ID:         draft.ID,
		Name:       draft.Name,
		Type:       draft.Type,
		Status:     draft.Status,
		Required:   draft.Required,
		UploadedAt: draft.UploadedAt,
	}
	if doc.ID == "" {
		doc.ID = s.opts.newID()
	}
	if doc.Status == "" {
		doc.Status = domain.DocumentPending
	}
	return doc
}
