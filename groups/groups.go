// Package groups wraps the Planning Center groups product: the v2
// JSON API where it has coverage, and the authenticated HTML front end
// (settings forms, CSRF-token replay, embedded-script JSON) where it
// does not.
package groups

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/bpdavis86/planning-center-backend/backend"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("groups")

type Provider struct {
	People    *PeopleProvider
	Tags      *TagsProvider
	Locations *SharedLocationsProvider

	client *backend.Client
}

func NewProvider(client *backend.Client) *Provider {
	return &Provider{
		People:    &PeopleProvider{client: client},
		Tags:      &TagsProvider{client: client},
		Locations: &SharedLocationsProvider{client: client},
		client:    client,
	}
}

func (p *Provider) apiURL(id int64) string {
	return fmt.Sprintf("%s/%d", p.client.Endpoints.GroupsAPI(), id)
}

func (p *Provider) frontendURL(id int64) string {
	return fmt.Sprintf("%s/%d", p.client.Endpoints.GroupsFrontend(), id)
}

// idFromURL extracts a group id from an API or front-end group URL,
// rejecting URLs pointed at other hosts.
func (p *Provider) idFromURL(rawurl string) (int64, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return 0, err
	}
	matched := false
	for _, known := range []string{p.client.Endpoints.GroupsAPI(), p.client.Endpoints.GroupsFrontend()} {
		k, err := url.Parse(known)
		if err != nil {
			continue
		}
		if u.Host == k.Host {
			matched = true
			break
		}
	}
	if !matched {
		return 0, fmt.Errorf("url %s is not based on the Planning Center API or groups front end", rawurl)
	}
	return parseID(path.Base(u.Path))
}

func (p *Provider) newGroup(id int64, data *GroupData) *Group {
	g := &Group{
		ID:          id,
		AutoRefresh: true,
		client:      p.client,
		provider:    p,
		data:        data,
	}
	g.Locations = &LocationsProvider{client: p.client, groupID: id}
	return g
}

func (p *Provider) exists(ctx context.Context, name string) (bool, error) {
	matches, err := p.Query(ctx, name)
	if err != nil {
		return false, err
	}
	for _, g := range matches {
		attrs, err := g.Attributes(ctx)
		if err != nil {
			return false, err
		}
		if attrs != nil && attrs.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Create makes a new group and returns its accessor. It refuses to run
// on a logged-out session and refuses duplicate names, since the
// vendor quietly tolerates both in confusing ways.
func (p *Provider) Create(ctx context.Context, name string, groupType GroupType) (*Group, error) {
	ctx, span := tracer.Start(ctx, "provider:Create")
	defer span.End()

	if !p.client.LoggedIn(ctx) {
		err := fmt.Errorf("user is not logged in")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	exists, err := p.exists(ctx, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check for existing group")
		return nil, err
	}
	if exists {
		err := fmt.Errorf("group with name %s already exists", name)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	form := url.Values{}
	form.Set("group[name]", name)
	form.Set("group[group_type_id]", groupType.formValue())
	res, err := p.client.PostForm(ctx, p.client.Endpoints.GroupsFrontend(), form, backend.MutateOptions{
		CSRFPage: p.client.Endpoints.GroupsFrontend(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group creation post failed")
		return nil, err
	}

	// the new group's front-end URL comes back in the Location header
	location := res.Header().Get("Location")
	if location == "" {
		err := fmt.Errorf("could not get the new group id from response, perhaps group create failed due to duplicate name")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	id, err := p.idFromURL(location)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse new group id")
		return nil, err
	}
	return p.newGroup(id, nil), nil
}

// Get fetches a specific group by id.
func (p *Provider) Get(ctx context.Context, id int64) (*Group, error) {
	data, err := backend.QueryOne[GroupData](ctx, p.client, p.apiURL(id), nil)
	if err != nil {
		return nil, err
	}
	return p.newGroup(id, &data), nil
}

// Query lists groups, optionally filtered by name. List results are
// partial records, so the returned accessors reload their attributes
// lazily.
func (p *Provider) Query(ctx context.Context, name string) ([]*Group, error) {
	params := url.Values{}
	if name != "" {
		params.Set("where[name]", name)
	}
	raw, err := backend.QueryAll[GroupData](ctx, p.client, p.client.Endpoints.GroupsAPI(), params, 0)
	if err != nil {
		return nil, err
	}

	out := make([]*Group, 0, len(raw))
	for _, g := range raw {
		id, err := parseID(g.ID)
		if err != nil {
			return nil, fmt.Errorf("unparseable group id %q: %w", g.ID, err)
		}
		out = append(out, p.newGroup(id, nil))
	}
	return out, nil
}
