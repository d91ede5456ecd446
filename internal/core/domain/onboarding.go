package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type TaskType string

const (
	TaskDocumentUpload TaskType = "document_upload"
	TaskDocumentReview TaskType = "document_review"
	TaskFormCompletion TaskType = "form_completion"
	TaskAcknowledgment TaskType = "acknowledgment"
	TaskOrientation    TaskType = "orientation"
	TaskSystemAccess   TaskType = "system_access"
)

var TaskTypes = []TaskType{
	TaskDocumentUpload,
	TaskDocumentReview,
	TaskFormCompletion,
	TaskAcknowledgment,
	TaskOrientation,
	TaskSystemAccess,
}

func (t TaskType) Valid() bool {
	for _, known := range TaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        TaskType     `json:"type"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority,omitempty"`
	ActionLabel string       `json:"actionLabel,omitempty"`
	DueDate     *Date        `json:"dueDate,omitempty"`
	AssignedBy  string       `json:"assignedBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != TaskCompleted && t.DueDate.Time.Before(now)
}

// TaskDraft is the caller-supplied shape for a new task. ID and Status are
// optional; seeds carry their own ids, ad-hoc tasks get generated ones.
type TaskDraft struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description,omitempty"`
	Type        TaskType     `json:"type" validate:"required,task_type"`
	Status      TaskStatus   `json:"status,omitempty" validate:"omitempty,task_status"`
	Priority    TaskPriority `json:"priority,omitempty" validate:"omitempty,task_priority"`
	ActionLabel string       `json:"actionLabel,omitempty"`
	DueDate     *Date        `json:"dueDate,omitempty"`
	AssignedBy  string       `json:"assignedBy,omitempty"`
}

type TaskPatch struct {
	Title       Optional[string]       `json:"title"`
	Description Optional[string]       `json:"description"`
	Status      Optional[TaskStatus]   `json:"status"`
	Priority    Optional[TaskPriority] `json:"priority"`
	ActionLabel Optional[string]       `json:"actionLabel"`
	DueDate     Optional[*Date]        `json:"dueDate"`
	AssignedBy  Optional[string]       `json:"assignedBy"`
	CompletedAt Optional[*time.Time]   `json:"completedAt"`
}

// Apply merges the patch and stamps UpdatedAt. Completing a task without an
// explicit completedAt stamps it with now; reopening one clears it.
func (p TaskPatch) Apply(task *Task, now time.Time) {
	p.Title.ApplyTo(&task.Title)
	p.Description.ApplyTo(&task.Description)
	p.Status.ApplyTo(&task.Status)
	p.Priority.ApplyTo(&task.Priority)
	p.ActionLabel.ApplyTo(&task.ActionLabel)
	p.DueDate.ApplyTo(&task.DueDate)
	p.AssignedBy.ApplyTo(&task.AssignedBy)
	p.CompletedAt.ApplyTo(&task.CompletedAt)

	if p.Status.Set && !p.CompletedAt.Set {
		switch {
		case p.Status.Value != TaskCompleted:
			task.CompletedAt = nil
		case task.CompletedAt == nil:
			stamp := now
			task.CompletedAt = &stamp
		}
	}
	stamp := now
	task.UpdatedAt = &stamp
}

type DocumentStatus string

const (
	DocumentPending       DocumentStatus = "pending"
	DocumentPendingReview DocumentStatus = "pending_review"
	DocumentApproved      DocumentStatus = "approved"
	DocumentRejected      DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentPending, DocumentPendingReview, DocumentApproved, DocumentRejected:
		return true
	default:
		return false
	}
}

type Document struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type,omitempty"`
	Status     DocumentStatus `json:"status"`
	Required   bool           `json:"required"`
	UploadedAt *time.Time     `json:"uploadedAt"`
	ReviewedAt *time.Time     `json:"reviewedAt,omitempty"`
}

type DocumentDraft struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name" validate:"required"`
	Type       string         `json:"type,omitempty"`
	Status     DocumentStatus `json:"status,omitempty" validate:"omitempty,document_status"`
	Required   bool           `json:"required"`
	UploadedAt *time.Time     `json:"uploadedAt,omitempty"`
}

// OnboardingSeed is the caller-supplied content of a fresh onboarding record.
type OnboardingSeed struct {
	Tasks              []TaskDraft     `json:"tasks" validate:"dive"`
	Documents          []DocumentDraft `json:"documents" validate:"dive"`
	StartDate          *Date           `json:"startDate,omitempty"`
	ExpectedStartDate  *Date           `json:"expectedStartDate,omitempty"`
	AssignedDepartment string          `json:"assignedDepartment,omitempty"`
	AssignedManager    string          `json:"assignedManager,omitempty"`
}

// CheckIDs rejects a seed that repeats a task or document id. Updates only
// ever reach the first entry with a given id.
func (s OnboardingSeed) CheckIDs() error {
	taskIDs := make(map[string]struct{}, len(s.Tasks))
	for _, task := range s.Tasks {
		id := strings.TrimSpace(task.ID)
		if id == "" {
			continue
		}
		if _, dup := taskIDs[id]; dup {
			return fmt.Errorf("duplicate task id %q", id)
		}
		taskIDs[id] = struct{}{}
	}
	docIDs := make(map[string]struct{}, len(s.Documents))
	for _, doc := range s.Documents {
		id := strings.TrimSpace(doc.ID)
		if id == "" {
			continue
		}
		if _, dup := docIDs[id]; dup {
			return fmt.Errorf("duplicate document id %q", id)
		}
		docIDs[id] = struct{}{}
	}
	return nil
}

type OnboardingRecord struct {
	ApplicantID        string     `json:"applicantId"`
	Stage              Stage      `json:"stage"`
	Tasks              []Task     `json:"tasks"`
	Documents          []Document `json:"documents"`
	StartDate          *Date      `json:"startDate"`
	ExpectedStartDate  *Date      `json:"expectedStartDate"`
	AssignedDepartment string     `json:"assignedDepartment"`
	AssignedManager    string     `json:"assignedManager"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// DefaultOnboardingRecord is what callers see for an applicant that has no
// stored record.
func DefaultOnboardingRecord(applicantID string) OnboardingRecord {
	return OnboardingRecord{
		ApplicantID: applicantID,
		Stage:       StageApplicationSubmitted,
		Tasks:       []Task{},
		Documents:   []Document{},
	}
}

// Clone copies the record deeply enough that mutating the copy's task and
// document slices leaves the original untouched.
func (r OnboardingRecord) Clone() OnboardingRecord {
	out := r
	out.Tasks = append(make([]Task, 0, len(r.Tasks)), r.Tasks...)
	out.Documents = append(make([]Document, 0, len(r.Documents)), r.Documents...)
	return out
}

func (r OnboardingRecord) TaskIndex(taskID string) int {
	for i, task := range r.Tasks {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}

func (r OnboardingRecord) DocumentIndex(documentID string) int {
	for i, doc := range r.Documents {
		if doc.ID == documentID {
			return i
		}
	}
	return -1
}

func (r OnboardingRecord) CompletedTasks() int {
	n := 0
	for _, task := range r.Tasks {
		if task.Status == TaskCompleted {
			n++
		}
	}
	return n
}

// TaskProgress is the rounded share of completed tasks; 0 without tasks.
func (r OnboardingRecord) TaskProgress() int {
	if len(r.Tasks) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.CompletedTasks()) / float64(len(r.Tasks))))
}

func (r OnboardingRecord) OverdueTasks(now time.Time) []Task {
	out := make([]Task, 0)
	for _, task := range r.Tasks {
		if task.Overdue(now) {
			out = append(out, task)
		}
	}
	return out
}

// BottleneckIncompleteThreshold is the number of open tasks at which an
// applicant is flagged even without overdue work.
const BottleneckIncompleteThreshold = 3

func (r OnboardingRecord) IsBottleneck(now time.Time) bool {
	incomplete := len(r.Tasks) - r.CompletedTasks()
	return incomplete >= BottleneckIncompleteThreshold || len(r.OverdueTasks(now)) > 0
}

// NextPendingTask returns the first pending task in list order.
func (r OnboardingRecord) NextPendingTask() (Task, bool) {
	for _, task := range r.Tasks {
		if task.Status == TaskPending {
			return task, true
		}
	}
	return Task{}, false
}

// OutstandingRequiredDocuments lists required documents not yet approved.
func (r OnboardingRecord) OutstandingRequiredDocuments() []Document {
	out := make([]Document, 0)
	for _, doc := range r.Documents {
		if doc.Required && doc.Status != DocumentApproved {
			out = append(out, doc)
		}
	}
	return out
}

type OnboardingSummary struct {
	ApplicantID          string         `json:"applicantId"`
	Stage                Stage          `json:"stage"`
	StageLabel           string         `json:"stageLabel"`
	AssignedDepartment   string         `json:"assignedDepartment"`
	TotalTasks           int            `json:"totalTasks"`
	CompletedTasks       int            `json:"completedTasks"`
	Progress             int            `json:"progress"`
	OverdueTasks         int            `json:"overdueTasks"`
	Bottleneck           bool           `json:"bottleneck"`
	NextTask             *Task          `json:"nextTask,omitempty"`
	OutstandingDocuments int            `json:"outstandingDocuments"`
	Timeline             []TimelineStep `json:"timeline"`
}

func (r OnboardingRecord) Summary(now time.Time) OnboardingSummary {
	summary := OnboardingSummary{
		ApplicantID:          r.ApplicantID,
		Stage:                r.Stage,
		StageLabel:           r.Stage.Label(),
		AssignedDepartment:   r.AssignedDepartment,
		TotalTasks:           len(r.Tasks),
		CompletedTasks:       r.CompletedTasks(),
		Progress:             r.TaskProgress(),
		OverdueTasks:         len(r.OverdueTasks(now)),
		Bottleneck:           r.IsBottleneck(now),
		OutstandingDocuments: len(r.OutstandingRequiredDocuments()),
		Timeline:             Timeline(r.Stage),
	}
	if next, ok := r.NextPendingTask(); ok {
		summary.NextTask = &next
	}
	return summary
}
