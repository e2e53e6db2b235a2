package groups

import (
	"encoding/json"
	"strconv"
	"time"
)

// GroupType is the numeric group-type id from the tenant's groups
// configuration.
type GroupType int64

const (
	GroupTypeSmallGroup      GroupType = 82050
	GroupTypeSeasonalClasses GroupType = 82051
	GroupTypeOnline          GroupType = 156530
	// GroupTypeUnique marks a type id not covered by the named
	// constants above.
	GroupTypeUnique GroupType = -1
)

func (t GroupType) formValue() string {
	if t == GroupTypeUnique {
		return "unique"
	}
	return strconv.FormatInt(int64(t), 10)
}

// groupTypeFromID maps a relationship id onto a known type, falling
// back to GroupTypeUnique.
func groupTypeFromID(id int64) GroupType {
	switch GroupType(id) {
	case GroupTypeSmallGroup, GroupTypeSeasonalClasses, GroupTypeOnline:
		return GroupType(id)
	}
	return GroupTypeUnique
}

type EnrollmentStrategy string

const (
	EnrollmentClosed        EnrollmentStrategy = "closed"
	EnrollmentRequestToJoin EnrollmentStrategy = "request_to_join"
	EnrollmentOpenSignup    EnrollmentStrategy = "open_signup"
)

type LocationType string

const (
	LocationPhysical LocationType = "physical"
	LocationVirtual  LocationType = "virtual"
)

type EventsVisibility string

const (
	EventsVisibleToMembers EventsVisibility = "members"
	EventsVisibleToPublic  EventsVisibility = "public"
)

// DisplayPreference controls how a physical location is shown to
// non-members.
type DisplayPreference string

const (
	DisplayExact       DisplayPreference = "exact"
	DisplayApproximate DisplayPreference = "approximate"
	DisplayHidden      DisplayPreference = "hidden"
)

const (
	RoleMember = "member"
	RoleLeader = "leader"
)

type Relationship struct {
	Data *RelationshipData `json:"data"`
}

type RelationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type GroupData struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    GroupAttributes         `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
	Links         map[string]string       `json:"links"`
}

type GroupAttributes struct {
	ContactEmail             *string            `json:"contact_email"`
	CreatedAt                time.Time          `json:"created_at"`
	Description              *string            `json:"description"`
	EnrollmentOpen           bool               `json:"enrollment_open"`
	EnrollmentStrategy       EnrollmentStrategy `json:"enrollment_strategy"`
	EventsVisibility         EventsVisibility   `json:"events_visibility"`
	HeaderImage              map[string]string  `json:"header_image"`
	LocationTypePreference   LocationType       `json:"location_type_preference"`
	MembershipsCount         int                `json:"memberships_count"`
	Name                     string             `json:"name"`
	PublicChurchCenterWebURL *string            `json:"public_church_center_web_url"`
	Schedule                 *string            `json:"schedule"`
	ArchivedAt               *time.Time         `json:"archived_at"`
	VirtualLocationURL       *string            `json:"virtual_location_url"`
}

type MembershipData struct {
	Type       string               `json:"type"`
	ID         string               `json:"id"`
	Attributes MembershipAttributes `json:"attributes"`
}

type MembershipAttributes struct {
	// AccountCenterIdentifier is the person id shared with the rest of
	// Planning Center, as opposed to the groups-local person id.
	AccountCenterIdentifier json.Number `json:"account_center_identifier"`
	Avatar                  string      `json:"avatar"`
	EmailAddress            *string     `json:"email_address"`
	FirstName               string      `json:"first_name"`
	JoinedAt                *time.Time  `json:"joined_at"`
	LastName                string      `json:"last_name"`
	PhoneNumber             *string     `json:"phone_number"`
	Role                    string      `json:"role"`
}

type EventData struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes EventAttributes   `json:"attributes"`
	Links      map[string]string `json:"links"`
}

type EventAttributes struct {
	AttendanceRequestsEnabled bool         `json:"attendance_requests_enabled"`
	AutomatedRemindersEnabled bool         `json:"automated_reminders_enabled"`
	Description               *string      `json:"description"`
	EndsAt                    *time.Time   `json:"ends_at"`
	LocationTypePreference    LocationType `json:"location_type_preference"`
	Name                      string       `json:"name"`
	StartsAt                  *time.Time   `json:"starts_at"`
	VirtualLocationURL        *string      `json:"virtual_location_url"`
}

type TagData struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	Attributes TagAttributes `json:"attributes"`
}

type TagAttributes struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// PersonData is a person as seen by the groups v2 API; only people who
// have ever interacted with the groups system show up there.
type PersonData struct {
	Type       string           `json:"type"`
	ID         string           `json:"id"`
	Attributes PersonAttributes `json:"attributes"`
}

type PersonAttributes struct {
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// LocationData is a shared location from the groups v2 API. The v2
// endpoint can hand back ids that a given group cannot actually use,
// which is why the per-group v1 provider is preferred for writes.
type LocationData struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Attributes LocationAttributes `json:"attributes"`
}

type LocationAttributes struct {
	DisplayPreference    DisplayPreference `json:"display_preference"`
	FullFormattedAddress *string           `json:"full_formatted_address"`
	Latitude             *float64          `json:"latitude"`
	Longitude            *float64          `json:"longitude"`
	Name                 string            `json:"name"`
	Radius               json.Number       `json:"radius"`
	Strategy             string            `json:"strategy"`
}

// LocationV1 is a location as returned by the per-group v1 endpoint.
type LocationV1 struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	FormattedAddress  string            `json:"formatted_address"`
	Latitude          json.Number       `json:"latitude"`
	Longitude         json.Number       `json:"longitude"`
	DisplayPreference DisplayPreference `json:"display_preference"`
}

type locationV1Response struct {
	ID        int64        `json:"id"`
	Locations []LocationV1 `json:"locations"`
}

// personV1Response is the shape of the groups v1 per-person endpoint.
// Its id field is the groups-local person id the member add/remove
// forms require.
type personV1Response struct {
	ID              int64             `json:"id"`
	AccountCenterID int64             `json:"account_center_id"`
	Errors          []json.RawMessage `json:"errors"`
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
