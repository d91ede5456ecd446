package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOnboardingRecordReadModel(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := NewDate(now.AddDate(0, 0, -1))
	tomorrow := NewDate(now.AddDate(0, 0, 1))

	record := OnboardingRecord{
		ApplicantID: "APP-1",
		Stage:       StagePreOnboarding,
		Tasks: []Task{
			{ID: "t1", Status: TaskCompleted, DueDate: &yesterday},
			{ID: "t2", Status: TaskPending, DueDate: &tomorrow},
			{ID: "t3", Status: TaskPending, DueDate: &yesterday},
		},
		Documents: []Document{
			{ID: "d1", Required: true, Status: DocumentApproved},
			{ID: "d2", Required: true, Status: DocumentPendingReview},
			{ID: "d3", Required: false, Status: DocumentPending},
		},
	}

	if got := record.TaskProgress(); got != 33 {
		t.Fatalf("TaskProgress() = %d, want 33", got)
	}
	overdue := record.OverdueTasks(now)
	if len(overdue) != 1 || overdue[0].ID != "t3" {
		t.Fatalf("unexpected overdue tasks %+v", overdue)
	}
	if !record.IsBottleneck(now) {
		t.Fatalf("overdue work must flag a bottleneck")
	}
	next, ok := record.NextPendingTask()
	if !ok || next.ID != "t2" {
		t.Fatalf("expected t2 next, got %+v", next)
	}
	if got := record.OutstandingRequiredDocuments(); len(got) != 1 || got[0].ID != "d2" {
		t.Fatalf("unexpected outstanding documents %+v", got)
	}

	summary := record.Summary(now)
	if summary.StageLabel != "Pre-Onboarding" || summary.OverdueTasks != 1 || summary.NextTask == nil {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestTaskProgressWithoutTasks(t *testing.T) {
	if got := DefaultOnboardingRecord("APP-1").TaskProgress(); got != 0 {
		t.Fatalf("TaskProgress() = %d, want 0", got)
	}
}

func TestCloneDetachesSlices(t *testing.T) {
	original := OnboardingRecord{Tasks: []Task{{ID: "t1", Status: TaskPending}}}
	copied := original.Clone()
	copied.Tasks[0].Status = TaskCompleted
	copied.Tasks = append(copied.Tasks, Task{ID: "t2"})

	if original.Tasks[0].Status != TaskPending || len(original.Tasks) != 1 {
		t.Fatalf("clone mutated original: %+v", original.Tasks)
	}
}

func TestTaskPatchApply(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	task := Task{ID: "t1", Title: "Upload ID", Status: TaskPending, Priority: PriorityHigh}

	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"status":"completed","priority":null}`), &patch); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	patch.Apply(&task, now)

	if task.Status != TaskCompleted || task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
		t.Fatalf("expected completion stamped, got %+v", task)
	}
	if task.Priority != "" {
		t.Fatalf("null must clear priority, got %q", task.Priority)
	}
	if task.Title != "Upload ID" {
		t.Fatalf("absent title must be kept, got %q", task.Title)
	}
	if task.UpdatedAt == nil {
		t.Fatalf("expected updatedAt stamped")
	}
}

func TestTaskPatchReopenClearsCompletion(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	done := now.Add(-time.Hour)
	task := Task{ID: "t1", Status: TaskCompleted, CompletedAt: &done}

	TaskPatch{Status: Set(TaskPending)}.Apply(&task, now)
	if task.Status != TaskPending || task.CompletedAt != nil {
		t.Fatalf("reopened task must drop completedAt, got %+v", task)
	}

	explicit := now.Add(-2 * time.Hour)
	TaskPatch{Status: Set(TaskPending), CompletedAt: Set(&explicit)}.Apply(&task, now)
	if task.CompletedAt == nil || !task.CompletedAt.Equal(explicit) {
		t.Fatalf("explicit completedAt must win, got %v", task.CompletedAt)
	}

	TaskPatch{Status: Set(TaskCompleted)}.Apply(&task, now)
	if task.CompletedAt == nil || !task.CompletedAt.Equal(explicit) {
		t.Fatalf("completing again must keep the stored stamp, got %v", task.CompletedAt)
	}
}

func TestOnboardingSeedCheckIDs(t *testing.T) {
	tests := []struct {
		name    string
		seed    OnboardingSeed
		wantErr bool
	}{
		{
			name: "unique and generated ids",
			seed: OnboardingSeed{
				Tasks:     []TaskDraft{{ID: "t1"}, {ID: "t2"}, {}, {}},
				Documents: []DocumentDraft{{ID: "t1"}, {}},
			},
		},
		{
			name:    "repeated task id",
			seed:    OnboardingSeed{Tasks: []TaskDraft{{ID: "t1", Title: "a"}, {ID: " t1", Title: "b"}}},
			wantErr: true,
		},
		{
			name:    "repeated document id",
			seed:    OnboardingSeed{Documents: []DocumentDraft{{ID: "d1"}, {ID: "d1"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seed.CheckIDs()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckIDs() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2026-03-10T15:04:05Z"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `"2026-03-10"` {
		t.Fatalf("unexpected date encoding %s", raw)
	}
}
