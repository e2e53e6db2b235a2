package groups

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bpdavis86/planning-center-backend/backend"
)

// TagsProvider reads the tenant's group tags from the v2 API. Tags are
// created and organized in the admin UI, so this provider is read-only.
type TagsProvider struct {
	client *backend.Client
}

// Query lists tags, optionally filtered by name. The filter is the
// API's own and matches substrings.
func (p *TagsProvider) Query(ctx context.Context, name string) ([]TagData, error) {
	params := url.Values{}
	if name != "" {
		params.Set("where[name]", name)
	}
	return backend.QueryAll[TagData](ctx, p.client, p.client.Endpoints.GroupsTagsAPI(), params, 0)
}

func (p *TagsProvider) Get(ctx context.Context, id int64) (*TagData, error) {
	data, err := backend.QueryOne[TagData](ctx, p.client,
		fmt.Sprintf("%s/%d", p.client.Endpoints.GroupsTagsAPI(), id), nil)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Resolve turns a tag name into its id, requiring exactly one match so
// that a substring hit on the wrong tag cannot slip through.
func (p *TagsProvider) Resolve(ctx context.Context, name string) (int64, error) {
	tags, err := p.Query(ctx, name)
	if err != nil {
		return 0, err
	}
	var matches []TagData
	for _, t := range tags {
		if t.Attributes.Name == name {
			matches = append(matches, t)
		}
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("no tag named %q", name)
	}
	if len(matches) > 1 {
		return 0, fmt.Errorf("%d tags named %q, use an id instead", len(matches), name)
	}
	return parseID(matches[0].ID)
}
