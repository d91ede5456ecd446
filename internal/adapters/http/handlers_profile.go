package httpadapter

import (
	"net/http"

	"github.com/kirillkom/hris-onboarding/internal/core/domain"
)

type profileResponse struct {
	ApplicantID     string                                           `json:"applicantId"`
	Profile         *domain.ApplicantProfile                         `json:"profile"`
	Completion      int                                              `json:"completion"`
	MissingFields   []domain.ProfileField                            `json:"missingFields"`
	Sections        map[domain.ProfileSection]domain.SectionProgress `json:"sections"`
	ApplicationGaps []domain.ProfileField                            `json:"applicationGaps"`
	RecommendedGaps []domain.ProfileField                            `json:"recommendedGaps"`
	ReadyToApply    bool                                             `json:"readyToApply"`
}

func newProfileResponse(applicantID string, profile *domain.ApplicantProfile) profileResponse {
	return profileResponse{
		ApplicantID:     applicantID,
		Profile:         profile,
		Completion:      profile.CompletionPercentage(),
		MissingFields:   profile.MissingFields(),
		Sections:        profile.SectionCompletion(),
		ApplicationGaps: profile.ApplicationGaps(),
		RecommendedGaps: profile.RecommendedGaps(),
		ReadyToApply:    profile.ReadyToApply(),
	}
}

func (rt *Router) getProfile(w http.ResponseWriter, r *http.Request) {
	rt.writeProfile(w, r, r.PathValue("applicantID"))
}

func (rt *Router) updateProfile(w http.ResponseWriter, r *http.Request) {
	rt.patchProfile(w, r, r.PathValue("applicantID"))
}

func (rt *Router) getProfileCompletion(w http.ResponseWriter, r *http.Request) {
	applicantID := r.PathValue("applicantID")
	completion, err := rt.profiles.CompletionPercentage(r.Context(), applicantID)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applicantId": applicantID,
		"completion":  completion,
	})
}

func (rt *Router) getMyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rt.writeProfile(w, r, actor.ID)
}

func (rt *Router) updateMyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rt.patchProfile(w, r, actor.ID)
}

func (rt *Router) writeProfile(w http.ResponseWriter, r *http.Request, applicantID string) {
	profile, _, err := rt.profiles.GetProfile(r.Context(), applicantID)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(applicantID, profile))
}

func (rt *Router) patchProfile(w http.ResponseWriter, r *http.Request, applicantID string) {
	var patch domain.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	profile, err := rt.profiles.UpdateProfile(r.Context(), applicantID, patch)
	rt.recordMutation("update_profile", err)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(applicantID, &profile))
}

func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, actorIDHeader+" header is required")
		return domain.Actor{}, false
	}
	return actor, true
}
