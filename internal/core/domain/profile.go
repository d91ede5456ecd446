package domain

import (
	"math"
	"time"
)

type DocumentRef struct {
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ApplicantProfile is the self-maintained applicant record. JSON names follow
// the persisted layout of the applicant_profile entry.
type ApplicantProfile struct {
	ApplicantID string `json:"applicantId"`

	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`

	Skills                    []string `json:"skills"`
	YearsOfExperience         *float64 `json:"yearsOfExperience"`
	PreferredRoles            []string `json:"preferredRoles"`
	EmploymentTypePreferences []string `json:"employmentTypePreferences"`

	PersonalityTraits []string `json:"personalityTraits"`
	WorkStyle         string   `json:"workStyle"`

	Resume              *DocumentRef  `json:"resume"`
	CV                  *DocumentRef  `json:"cv"`
	ValidID             *DocumentRef  `json:"validId"`
	SupportingDocuments []DocumentRef `json:"supportingDocuments"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// ProfilePatch is a shallow partial update: every Set field replaces the
// stored value, every unset field is kept.
type ProfilePatch struct {
	FullName      Optional[string] `json:"fullName"`
	Email         Optional[string] `json:"email"`
	ContactNumber Optional[string] `json:"contactNumber"`
	Address       Optional[string] `json:"address"`

	Skills                    Optional[[]string] `json:"skills"`
	YearsOfExperience         Optional[*float64] `json:"yearsOfExperience"`
	PreferredRoles            Optional[[]string] `json:"preferredRoles"`
	EmploymentTypePreferences Optional[[]string] `json:"employmentTypePreferences"`

	PersonalityTraits Optional[[]string] `json:"personalityTraits"`
	WorkStyle         Optional[string]   `json:"workStyle"`

	Resume              Optional[*DocumentRef]  `json:"resume"`
	CV                  Optional[*DocumentRef]  `json:"cv"`
	ValidID             Optional[*DocumentRef]  `json:"validId"`
	SupportingDocuments Optional[[]DocumentRef] `json:"supportingDocuments"`
}

func (p ProfilePatch) Apply(profile *ApplicantProfile) {
	p.FullName.ApplyTo(&profile.FullName)
	p.Email.ApplyTo(&profile.Email)
	p.ContactNumber.ApplyTo(&profile.ContactNumber)
	p.Address.ApplyTo(&profile.Address)
	p.Skills.ApplyTo(&profile.Skills)
	p.YearsOfExperience.ApplyTo(&profile.YearsOfExperience)
	p.PreferredRoles.ApplyTo(&profile.PreferredRoles)
	p.EmploymentTypePreferences.ApplyTo(&profile.EmploymentTypePreferences)
	p.PersonalityTraits.ApplyTo(&profile.PersonalityTraits)
	p.WorkStyle.ApplyTo(&profile.WorkStyle)
	p.Resume.ApplyTo(&profile.Resume)
	p.CV.ApplyTo(&profile.CV)
	p.ValidID.ApplyTo(&profile.ValidID)
	p.SupportingDocuments.ApplyTo(&profile.SupportingDocuments)

	profile.Skills = dedupe(profile.Skills)
}

type ProfileSection string

const (
	SectionPersonal     ProfileSection = "personal"
	SectionProfessional ProfileSection = "professional"
	SectionAttributes   ProfileSection = "attributes"
	SectionDocuments    ProfileSection = "documents"
)

type ProfileField string

const (
	FieldFullName                  ProfileField = "fullName"
	FieldEmail                     ProfileField = "email"
	FieldContactNumber             ProfileField = "contactNumber"
	FieldAddress                   ProfileField = "address"
	FieldSkills                    ProfileField = "skills"
	FieldYearsOfExperience         ProfileField = "yearsOfExperience"
	FieldPreferredRoles            ProfileField = "preferredRoles"
	FieldEmploymentTypePreferences ProfileField = "employmentTypePreferences"
	FieldPersonalityTraits         ProfileField = "personalityTraits"
	FieldWorkStyle                 ProfileField = "workStyle"
	FieldResume                    ProfileField = "resume"
	FieldValidID                   ProfileField = "validId"
)

type trackedField struct {
	section ProfileSection
	field   ProfileField
	weight  float64
	filled  func(p *ApplicantProfile) bool
}

// The completion checklist, in section order. Personal and professional
// fields weigh one slot each; the attributes and documents sections share one
// slot per section between their two fields, so the weights sum to
// CompletionFieldCount. A profile with only an email must score 10, so do not
// flatten the half weights into a twelve-field denominator.
var completionChecklist = []trackedField{
	{SectionPersonal, FieldFullName, 1, func(p *ApplicantProfile) bool { return p.FullName != "" }},
	{SectionPersonal, FieldEmail, 1, func(p *ApplicantProfile) bool { return p.Email != "" }},
	{SectionPersonal, FieldContactNumber, 1, func(p *ApplicantProfile) bool { return p.ContactNumber != "" }},
	{SectionPersonal, FieldAddress, 1, func(p *ApplicantProfile) bool { return p.Address != "" }},
	{SectionProfessional, FieldSkills, 1, func(p *ApplicantProfile) bool { return len(p.Skills) > 0 }},
	{SectionProfessional, FieldYearsOfExperience, 1, func(p *ApplicantProfile) bool { return p.YearsOfExperience != nil }},
	{SectionProfessional, FieldPreferredRoles, 1, func(p *ApplicantProfile) bool { return len(p.PreferredRoles) > 0 }},
	{SectionProfessional, FieldEmploymentTypePreferences, 1, func(p *ApplicantProfile) bool { return len(p.EmploymentTypePreferences) > 0 }},
	{SectionAttributes, FieldPersonalityTraits, 0.5, func(p *ApplicantProfile) bool { return len(p.PersonalityTraits) > 0 }},
	{SectionAttributes, FieldWorkStyle, 0.5, func(p *ApplicantProfile) bool { return p.WorkStyle != "" }},
	{SectionDocuments, FieldResume, 0.5, func(p *ApplicantProfile) bool { return p.Resume != nil }},
	{SectionDocuments, FieldValidID, 0.5, func(p *ApplicantProfile) bool { return p.ValidID != nil }},
}

// CompletionFieldCount is the denominator of the completion percentage.
const CompletionFieldCount = 10

// CompletionPercentage is recomputed from field contents on every call and
// rounds half away from zero. A nil profile scores 0.
func (p *ApplicantProfile) CompletionPercentage() int {
	if p == nil {
		return 0
	}
	var completed float64
	for _, item := range completionChecklist {
		if item.filled(p) {
			completed += item.weight
		}
	}
	return int(math.Round(100 * completed / CompletionFieldCount))
}

type SectionProgress struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

// SectionCompletion reports filled/total field counts per section.
func (p *ApplicantProfile) SectionCompletion() map[ProfileSection]SectionProgress {
	out := make(map[ProfileSection]SectionProgress, 4)
	for _, item := range completionChecklist {
		progress := out[item.section]
		progress.Total++
		if p != nil && item.filled(p) {
			progress.Filled++
		}
		out[item.section] = progress
	}
	return out
}

// MissingFields lists checklist fields that do not count as filled yet.
func (p *ApplicantProfile) MissingFields() []ProfileField {
	out := make([]ProfileField, 0)
	for _, item := range completionChecklist {
		if p == nil || !item.filled(p) {
			out = append(out, item.field)
		}
	}
	return out
}

// ApplicationGaps lists the fields a job application requires but the
// profile lacks. An empty result means the applicant may apply.
func (p *ApplicantProfile) ApplicationGaps() []ProfileField {
	return missingOf(p, []fieldCheck{
		{FieldFullName, func(p *ApplicantProfile) bool { return p.FullName != "" }},
		{FieldEmail, func(p *ApplicantProfile) bool { return p.Email != "" }},
		{FieldContactNumber, func(p *ApplicantProfile) bool { return p.ContactNumber != "" }},
	})
}

// RecommendedGaps lists fields worth adding before applying that do not
// block the application.
func (p *ApplicantProfile) RecommendedGaps() []ProfileField {
	return missingOf(p, []fieldCheck{
		{FieldResume, func(p *ApplicantProfile) bool { return p.Resume != nil }},
	})
}

type fieldCheck struct {
	field  ProfileField
	filled func(*ApplicantProfile) bool
}

func missingOf(p *ApplicantProfile, checks []fieldCheck) []ProfileField {
	out := make([]ProfileField, 0)
	for _, item := range checks {
		if p == nil || !item.filled(p) {
			out = append(out, item.field)
		}
	}
	return out
}

func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (p *ApplicantProfile) ReadyToApply() bool {
	return len(p.ApplicationGaps()) == 0
}
