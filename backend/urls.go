package backend

import (
	"fmt"
	"net/url"
)

// Endpoints holds the base URLs of the three Planning Center hosts the
// client talks to. The zero value is replaced with production defaults
// by NewClient; tests point all three at an httptest server.
type Endpoints struct {
	// API is the JSON API host, e.g. https://api.planningcenteronline.com
	API string
	// Groups is the groups front-end host, e.g. https://groups.planningcenteronline.com
	Groups string
	// Login is the login host, e.g. https://login.planningcenteronline.com
	Login string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		API:    "https://api.planningcenteronline.com",
		Groups: "https://groups.planningcenteronline.com",
		Login:  "https://login.planningcenteronline.com",
	}
}

func (e Endpoints) GroupsAPI() string {
	return e.API + "/groups/v2/groups"
}

func (e Endpoints) GroupsTagsAPI() string {
	return e.API + "/groups/v2/tags"
}

func (e Endpoints) GroupsPeopleAPI() string {
	return e.API + "/groups/v2/people"
}

func (e Endpoints) GroupsLocationsAPI() string {
	return e.API + "/groups/v2/locations"
}

func (e Endpoints) PeopleAPI() string {
	return e.API + "/people/v2/people"
}

// GroupsFrontend is the base of group pages on the front end; group
// pages live at GroupsFrontend()/<id>.
func (e Endpoints) GroupsFrontend() string {
	return e.Groups + "/groups"
}

// PersonV1API is the per-person endpoint of the groups v1 API. The
// member add/remove forms use the id returned here rather than the
// account-center person id.
func (e Endpoints) PersonV1API(personID int64) string {
	return fmt.Sprintf("%s/api/v1/people/%d.json", e.Groups, personID)
}

func (e Endpoints) GroupLocationsV1API(groupID int64) string {
	return fmt.Sprintf("%s/api/v1/groups/%d/locations.json", e.Groups, groupID)
}

func (e Endpoints) GroupLocationV1API(groupID, locationID int64) string {
	return fmt.Sprintf("%s/api/v1/groups/%d/locations/%d.json", e.Groups, groupID, locationID)
}

func (e Endpoints) loginNew() string {
	return e.Login + "/login/new"
}

func (e Endpoints) loginPost() string {
	return e.Login + "/login"
}

func (e Endpoints) logout() string {
	return e.Login + "/logout"
}

// me fails with a 401 when the session is not authenticated, which is
// the only reliable login probe since the login form itself returns
// 200 either way.
func (e Endpoints) me() string {
	return e.API + "/people/v2/me"
}

func (e Endpoints) hostnames() []string {
	var hosts []string
	for _, raw := range []string{e.API, e.Groups, e.Login} {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		hosts = append(hosts, u.Hostname())
	}
	return hosts
}
