package httpadapter

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
)

type onboardingListResponse struct {
	Items []domain.OnboardingSummary `json:"items"`
	Total int                        `json:"total"`
}

func (rt *Router) listOnboarding(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stage := domain.Stage(strings.TrimSpace(query.Get("stage")))
	department := strings.TrimSpace(query.Get("department"))

	var bottleneckOnly bool
	if raw := strings.TrimSpace(query.Get("bottleneck")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bottleneck must be a boolean")
			return
		}
		bottleneckOnly = parsed
	}

	records, err := rt.onboarding.ListOnboarding(r.Context())
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}

	now := rt.now()
	items := make([]domain.OnboardingSummary, 0, len(records))
	for _, record := range records {
		if stage != "" && record.Stage != stage {
			continue
		}
		if department != "" && !strings.EqualFold(record.AssignedDepartment, department) {
			continue
		}
		summary := record.Summary(now)
		if bottleneckOnly && !summary.Bottleneck {
			continue
		}
		items = append(items, summary)
	}
	writeJSON(w, http.StatusOK, onboardingListResponse{Items: items, Total: len(items)})
}

func (rt *Router) getOnboardingStatus(w http.ResponseWriter, r *http.Request) {
	record, err := rt.onboarding.GetOnboardingStatus(r.Context(), r.PathValue("applicantID"))
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) getOnboardingSummary(w http.ResponseWriter, r *http.Request) {
	rt.writeSummary(w, r, r.PathValue("applicantID"))
}

func (rt *Router) getMyOnboarding(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rt.writeSummary(w, r, actor.ID)
}

func (rt *Router) writeSummary(w http.ResponseWriter, r *http.Request, applicantID string) {
	record, err := rt.onboarding.GetOnboardingStatus(r.Context(), applicantID)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record.Summary(rt.now()))
}

func (rt *Router) getDocumentChecklist(w http.ResponseWriter, _ *http.Request) {
	items := rt.starter.DocumentChecklist()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (rt *Router) startOnboarding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Department string `json:"department"`
		Manager    string `json:"manager"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := rt.starter.StartOnboarding(
		r.Context(),
		r.PathValue("applicantID"),
		strings.TrimSpace(req.Department),
		strings.TrimSpace(req.Manager),
	)
	rt.recordMutation("start_onboarding", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (rt *Router) initializeOnboarding(w http.ResponseWriter, r *http.Request) {
	rt.applySeed(w, r, "initialize_onboarding", http.StatusCreated, rt.onboarding.InitializeOnboarding)
}

func (rt *Router) mergeOnboardingSeed(w http.ResponseWriter, r *http.Request) {
	rt.applySeed(w, r, "merge_onboarding_seed", http.StatusOK, rt.onboarding.MergeOnboardingSeed)
}

func (rt *Router) applySeed(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	status int,
	apply func(ctx context.Context, applicantID string, seed domain.OnboardingSeed) error,
) {
	var seed domain.OnboardingSeed
	if !decodeJSON(w, r, &seed) {
		return
	}

	applicantID := r.PathValue("applicantID")
	err := apply(r.Context(), applicantID, seed)
	rt.recordMutation(operation, err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	rt.writeRecord(w, r, status, applicantID)
}

func (rt *Router) updateOnboardingStage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stage  string `json:"stage"`
		Strict *bool  `json:"strict"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	stage, err := domain.ParseStage(req.Stage)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	var opts []ports.StageOption
	if req.Strict != nil {
		opts = append(opts, ports.WithStrict(*req.Strict))
	}

	applicantID := r.PathValue("applicantID")
	err = rt.onboarding.UpdateOnboardingStage(r.Context(), applicantID, stage, opts...)
	rt.recordMutation("update_stage", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	rt.writeRecord(w, r, http.StatusOK, applicantID)
}

func (rt *Router) addTask(w http.ResponseWriter, r *http.Request) {
	var draft domain.TaskDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	if strings.TrimSpace(draft.AssignedBy) == "" {
		if actor, ok := actorFromContext(r.Context()); ok {
			draft.AssignedBy = actor.ID
		}
	}

	task, err := rt.onboarding.AddTask(r.Context(), r.PathValue("applicantID"), draft)
	rt.recordMutation("add_task", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (rt *Router) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	applicantID := r.PathValue("applicantID")
	err := rt.onboarding.UpdateTask(r.Context(), applicantID, r.PathValue("taskID"), patch)
	rt.recordMutation("update_task", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	rt.writeRecord(w, r, http.StatusOK, applicantID)
}

func (rt *Router) addDocument(w http.ResponseWriter, r *http.Request) {
	var draft domain.DocumentDraft
	if !decodeJSON(w, r, &draft) {
		return
	}

	document, err := rt.onboarding.AddDocument(r.Context(), r.PathValue("applicantID"), draft)
	rt.recordMutation("add_document", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, document)
}

func (rt *Router) updateDocumentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.DocumentStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	applicantID := r.PathValue("applicantID")
	err := rt.onboarding.UpdateDocumentStatus(r.Context(), applicantID, r.PathValue("documentID"), req.Status)
	rt.recordMutation("update_document_status", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	rt.writeRecord(w, r, http.StatusOK, applicantID)
}

// writeRecord answers a mutation with the record as now stored.
func (rt *Router) writeRecord(w http.ResponseWriter, r *http.Request, status int, applicantID string) {
	record, err := rt.onboarding.GetOnboardingStatus(r.Context(), applicantID)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, record)
}
