package groups

import (
	"context"
	"net/url"

	"github.com/bpdavis86/planning-center-backend/backend"
)

// PeopleProvider queries people through the groups v2 API. Only people
// who have interacted with the groups product appear here; use the
// people package for the full directory.
type PeopleProvider struct {
	client *backend.Client
}

// Query lists people, optionally filtered by first and last name. Both
// filters match exactly and empty strings are ignored.
func (p *PeopleProvider) Query(ctx context.Context, firstName, lastName string) ([]PersonData, error) {
	params := url.Values{}
	if firstName != "" {
		params.Set("where[first_name]", firstName)
	}
	if lastName != "" {
		params.Set("where[last_name]", lastName)
	}
	return backend.QueryAll[PersonData](ctx, p.client, p.client.Endpoints.GroupsPeopleAPI(), params, 0)
}
