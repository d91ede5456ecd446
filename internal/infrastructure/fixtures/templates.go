package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

//go:embed default.yaml
var defaultTemplates []byte

type TaskTemplate struct {
	ID          string              `yaml:"id"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Type        domain.TaskType     `yaml:"type"`
	Priority    domain.TaskPriority `yaml:"priority"`
	ActionLabel string              `yaml:"actionLabel"`
	DueInDays   *int                `yaml:"dueInDays"`
}

type DocumentTemplate struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

// Templates is the default onboarding checklist. Due dates are stored
// relative to the day onboarding starts.
type Templates struct {
	Tasks     []TaskTemplate     `yaml:"tasks"`
	Documents []DocumentTemplate `yaml:"documents"`
}

func Default() (*Templates, error) {
	return Parse(defaultTemplates)
}

// Load reads templates from path, or the built-in checklist when path is
// empty.
func Load(path string) (*Templates, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %w", path, err)
	}
	return t, nil
}

func Parse(data []byte) (*Templates, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("fixtures: templates payload is empty")
	}
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("fixtures: decode templates: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.normalize()
	return &t, nil
}

func (t *Templates) Validate() error {
	taskIDs := make(map[string]struct{}, len(t.Tasks))
	for i, task := range t.Tasks {
		if strings.TrimSpace(task.Title) == "" {
			return fmt.Errorf("fixtures: task %d: title is required", i)
		}
		if !task.Type.Valid() {
			return fmt.Errorf("fixtures: task %q: unknown type %q", task.Title, task.Type)
		}
		if task.Priority != "" && !task.Priority.Valid() {
			return fmt.Errorf("fixtures: task %q: unknown priority %q", task.Title, task.Priority)
		}
		if task.DueInDays != nil && *task.DueInDays < 0 {
			return fmt.Errorf("fixtures: task %q: dueInDays must not be negative", task.Title)
		}
		if task.ID != "" {
			if _, dup := taskIDs[task.ID]; dup {
				return fmt.Errorf("fixtures: duplicate task id %q", task.ID)
			}
			taskIDs[task.ID] = struct{}{}
		}
	}
	docIDs := make(map[string]struct{}, len(t.Documents))
	for i, doc := range t.Documents {
		if strings.TrimSpace(doc.Name) == "" {
			return fmt.Errorf("fixtures: document %d: name is required", i)
		}
		if doc.ID != "" {
			if _, dup := docIDs[doc.ID]; dup {
				return fmt.Errorf("fixtures: duplicate document id %q", doc.ID)
			}
			docIDs[doc.ID] = struct{}{}
		}
	}
	return nil
}

func (t *Templates) normalize() {
	for i := range t.Tasks {
		t.Tasks[i].Title = strings.TrimSpace(t.Tasks[i].Title)
		t.Tasks[i].ID = strings.TrimSpace(t.Tasks[i].ID)
	}
	for i := range t.Documents {
		t.Documents[i].Name = strings.TrimSpace(t.Documents[i].Name)
		t.Documents[i].ID = strings.TrimSpace(t.Documents[i].ID)
	}
}

// Seed renders the task templates into an onboarding seed with due dates
// counted from base. Documents enter a record only when the applicant
// uploads them, so the seed carries none.
func (t *Templates) Seed(base domain.Date) domain.OnboardingSeed {
	seed := domain.OnboardingSeed{
		Tasks:     make([]domain.TaskDraft, 0, len(t.Tasks)),
		Documents: []domain.DocumentDraft{},
	}
	for _, task := range t.Tasks {
		draft := domain.TaskDraft{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Type:        task.Type,
			Status:      domain.TaskPending,
			Priority:    task.Priority,
			ActionLabel: task.ActionLabel,
		}
		if task.DueInDays != nil {
			due := base.AddDays(*task.DueInDays)
			draft.DueDate = &due
		}
		seed.Tasks = append(seed.Tasks, draft)
	}
	return seed
}

// DocumentChecklist lists the documents an applicant is asked to upload.
// Uploads reuse the checklist id.
func (t *Templates) DocumentChecklist() []domain.DocumentDraft {
	out := make([]domain.DocumentDraft, 0, len(t.Documents))
	for _, doc := range t.Documents {
		out = append(out, domain.DocumentDraft{
			ID:       doc.ID,
			Name:     doc.Name,
			Type:     doc.Type,
			Status:   domain.DocumentPending,
			Required: doc.Required,
		})
	}
	return out
}
