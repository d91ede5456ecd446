package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func fullProfile() *ApplicantProfile {
	years := 0.0
	return &ApplicantProfile{
		FullName:                  "Ana Reyes",
		Email:                     "ana@example.com",
		ContactNumber:             "+63 900 000 0000",
		Address:                   "Quezon City",
		Skills:                    []string{"go"},
		YearsOfExperience:         &years,
		PreferredRoles:            []string{"backend"},
		EmploymentTypePreferences: []string{"full_time"},
		PersonalityTraits:         []string{"curious"},
		WorkStyle:                 "remote",
		Resume:                    &DocumentRef{Name: "cv.pdf", UploadedAt: time.Now()},
		ValidID:                   &DocumentRef{Name: "id.png", UploadedAt: time.Now()},
	}
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name    string
		profile *ApplicantProfile
		want    int
	}{
		{name: "nil profile", profile: nil, want: 0},
		{name: "empty profile", profile: &ApplicantProfile{}, want: 0},
		{name: "email only", profile: &ApplicantProfile{Email: "a@b.com"}, want: 10},
		{name: "work style only", profile: &ApplicantProfile{WorkStyle: "hybrid"}, want: 5},
		{name: "empty lists do not count", profile: &ApplicantProfile{Skills: []string{}, PreferredRoles: []string{}}, want: 0},
		{name: "zero years of experience counts", profile: &ApplicantProfile{YearsOfExperience: new(float64)}, want: 10},
		{name: "all fields", profile: fullProfile(), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.CompletionPercentage(); got != tt.want {
				t.Fatalf("CompletionPercentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletionPercentageBelowHundredWhenAnyMissing(t *testing.T) {
	for _, item := range completionChecklist {
		p := fullProfile()
		switch item.field {
		case FieldFullName:
			p.FullName = ""
		case FieldEmail:
			p.Email = ""
		case FieldContactNumber:
			p.ContactNumber = ""
		case FieldAddress:
			p.Address = ""
		case FieldSkills:
			p.Skills = nil
		case FieldYearsOfExperience:
			p.YearsOfExperience = nil
		case FieldPreferredRoles:
			p.PreferredRoles = nil
		case FieldEmploymentTypePreferences:
			p.EmploymentTypePreferences = nil
		case FieldPersonalityTraits:
			p.PersonalityTraits = nil
		case FieldWorkStyle:
			p.WorkStyle = ""
		case FieldResume:
			p.Resume = nil
		case FieldValidID:
			p.ValidID = nil
		}
		if got := p.CompletionPercentage(); got >= 100 {
			t.Fatalf("missing %s still scores %d", item.field, got)
		}
		missing := p.MissingFields()
		if len(missing) != 1 || missing[0] != item.field {
			t.Fatalf("expected %s missing, got %v", item.field, missing)
		}
	}
}

func TestSectionCompletionAndGaps(t *testing.T) {
	p := &ApplicantProfile{FullName: "Ana", Email: "a@b.com", WorkStyle: "remote"}

	sections := p.SectionCompletion()
	if got := sections[SectionPersonal]; got.Filled != 2 || got.Total != 4 {
		t.Fatalf("unexpected personal progress %+v", got)
	}
	if got := sections[SectionAttributes]; got.Filled != 1 || got.Total != 2 {
		t.Fatalf("unexpected attributes progress %+v", got)
	}

	gaps := p.ApplicationGaps()
	if len(gaps) != 1 || gaps[0] != FieldContactNumber {
		t.Fatalf("unexpected gaps %v", gaps)
	}
	if recommended := p.RecommendedGaps(); len(recommended) != 1 || recommended[0] != FieldResume {
		t.Fatalf("unexpected recommended gaps %v", recommended)
	}
	if !fullProfile().ReadyToApply() {
		t.Fatalf("full profile should have no gaps")
	}
}

func TestReadyToApplyWithoutResume(t *testing.T) {
	p := &ApplicantProfile{FullName: "Ana", Email: "a@b.com", ContactNumber: "555-0100"}

	if !p.ReadyToApply() {
		t.Fatalf("resume must not block applying, gaps %v", p.ApplicationGaps())
	}
	if got := p.RecommendedGaps(); len(got) != 1 || got[0] != FieldResume {
		t.Fatalf("expected resume recommended, got %v", got)
	}
	var empty *ApplicantProfile
	if got := empty.ApplicationGaps(); len(got) != 3 {
		t.Fatalf("nil profile should miss all required fields, got %v", got)
	}
}

func TestEmailOnlyScoresTen(t *testing.T) {
	p := &ApplicantProfile{Email: "a@b.com"}
	if got := p.CompletionPercentage(); got != 10 {
		t.Fatalf("CompletionPercentage() = %d, want 10", got)
	}
}

func TestProfilePatchFromJSON(t *testing.T) {
	p := &ApplicantProfile{FullName: "Ana", Email: "a@b.com", Skills: []string{"go"}}

	var patch ProfilePatch
	if err := json.Unmarshal([]byte(`{"fullName":null,"skills":["sql","sql","go"]}`), &patch); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	patch.Apply(p)

	if p.FullName != "" {
		t.Fatalf("null must clear fullName, got %q", p.FullName)
	}
	if p.Email != "a@b.com" {
		t.Fatalf("absent key must keep email, got %q", p.Email)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "sql" || p.Skills[1] != "go" {
		t.Fatalf("expected deduplicated skills in order, got %v", p.Skills)
	}
}
