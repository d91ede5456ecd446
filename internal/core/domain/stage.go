package domain

import "fmt"

type Stage string

const (
	StageApplicationSubmitted Stage = "application_submitted"
	StageScreeningPassed      Stage = "screening_passed"
	StageOfferExtended        Stage = "offer_extended"
	StageOfferAccepted        Stage = "offer_accepted"
	StagePreOnboarding        Stage = "pre_onboarding"
	StageActiveOnboarding     Stage = "active_onboarding"
	StageFullyOnboarded       Stage = "fully_onboarded"
)

// Stages is the fixed lifecycle order.
var Stages = []Stage{
	StageApplicationSubmitted,
	StageScreeningPassed,
	StageOfferExtended,
	StageOfferAccepted,
	StagePreOnboarding,
	StageActiveOnboarding,
	StageFullyOnboarded,
}

var stageLabels = map[Stage]string{
	StageApplicationSubmitted: "Application Submitted",
	StageScreeningPassed:      "Screening Passed",
	StageOfferExtended:        "Offer Extended",
	StageOfferAccepted:        "Offer Accepted",
	StagePreOnboarding:        "Pre-Onboarding",
	StageActiveOnboarding:     "Active Onboarding",
	StageFullyOnboarded:       "Fully Onboarded",
}

// Index returns the position of s in Stages, or -1 for unknown values.
func (s Stage) Index() int {
	for i, known := range Stages {
		if s == known {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return "Not Started"
}

func ParseStage(raw string) (Stage, error) {
	stage := Stage(raw)
	if !stage.Valid() {
		return "", WrapError(ErrInvalidInput, "parse stage", fmt.Errorf("unknown stage %q", raw))
	}
	return stage, nil
}

// CheckForward rejects moves to an earlier stage. Staying on the same stage is
// allowed.
func CheckForward(from, to Stage) error {
	if to.Index() < from.Index() {
		return WrapError(ErrInvalidTransition, "update stage", fmt.Errorf("%s -> %s moves backwards", from, to))
	}
	return nil
}

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepCurrent   StepStatus = "current"
	StepUpcoming  StepStatus = "upcoming"
)

type TimelineStep struct {
	Stage  Stage      `json:"stage"`
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
}

// Timeline renders every stage relative to current.
func Timeline(current Stage) []TimelineStep {
	idx := current.Index()
	out := make([]TimelineStep, 0, len(Stages))
	for i, stage := range Stages {
		status := StepUpcoming
		switch {
		case i < idx:
			status = StepCompleted
		case i == idx:
			status = StepCurrent
		}
		out = append(out, TimelineStep{Stage: stage, Label: stage.Label(), Status: status})
	}
	return out
}
