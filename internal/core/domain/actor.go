package domain

type Role string

const (
	RoleApplicant  Role = "applicant"
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleHROfficer  Role = "hr_officer"
	RoleHRAnalyst  Role = "hr_analyst"
	RoleHRManager  Role = "hr_manager"
	RoleHRDirector Role = "hr_director"
	RoleCEO        Role = "ceo"
)

var Roles = []Role{
	RoleApplicant,
	RoleEmployee,
	RoleManager,
	RoleHROfficer,
	RoleHRAnalyst,
	RoleHRManager,
	RoleHRDirector,
	RoleCEO,
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) IsHR() bool {
	switch r {
	case RoleHROfficer, RoleHRAnalyst, RoleHRManager, RoleHRDirector:
		return true
	default:
		return false
	}
}

// Actor is the current user as reported by the identity provider. The stores
// only use ID as a record key.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
