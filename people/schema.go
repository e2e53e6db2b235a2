package people

import "time"

type PersonData struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes PersonAttributes `json:"attributes"`
}

// PersonAttributes mirrors the people v2 person record. Date-only
// fields come over the wire as YYYY-MM-DD strings, so they stay
// strings here rather than pretending to be timestamps.
type PersonAttributes struct {
	AccountingAdministrator bool       `json:"accounting_administrator"`
	Anniversary             *string    `json:"anniversary"`
	Avatar                  *string    `json:"avatar"`
	Birthdate               *string    `json:"birthdate"`
	CanCreateForms          bool       `json:"can_create_forms"`
	CanEmailLists           bool       `json:"can_email_lists"`
	Child                   bool       `json:"child"`
	CreatedAt               time.Time  `json:"created_at"`
	DemographicAvatarURL    string     `json:"demographic_avatar_url"`
	DirectoryStatus         string     `json:"directory_status"`
	FirstName               *string    `json:"first_name"`
	Gender                  *string    `json:"gender"`
	GivenName               *string    `json:"given_name"`
	Grade                   *int       `json:"grade"`
	GraduationYear          *int       `json:"graduation_year"`
	InactivatedAt           *time.Time `json:"inactivated_at"`
	LastName                string     `json:"last_name"`
	MedicalNotes            *string    `json:"medical_notes"`
	Membership              *string    `json:"membership"`
	MiddleName              *string    `json:"middle_name"`
	Name                    string     `json:"name"`
	Nickname                *string    `json:"nickname"`
	PassedBackgroundCheck   bool       `json:"passed_background_check"`
	PeoplePermissions       *string    `json:"people_permissions"`
	RemoteID                *int64     `json:"remote_id"`
	SchoolType              *string    `json:"school_type"`
	SiteAdministrator       bool       `json:"site_administrator"`
	Status                  string     `json:"status"`
	UpdatedAt               *time.Time `json:"updated_at"`
}
