package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Envelope is the JSON:API response wrapper the Planning Center v2 API
// uses for both scalar and multi-record results.
type Envelope[T any] struct {
	Data     T                          `json:"data"`
	Included []json.RawMessage          `json:"included"`
	Meta     map[string]json.RawMessage `json:"meta"`
	Links    map[string]string          `json:"links"`
}

// QueryOne fetches and decodes a scalar API result.
func QueryOne[T any](ctx context.Context, c *Client, rawurl string, params url.Values) (T, error) {
	var env Envelope[T]
	body, err := c.GetJSON(ctx, rawurl, params)
	if err != nil {
		return env.Data, err
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env.Data, fmt.Errorf("decode %s: %w", rawurl, err)
	}
	return env.Data, nil
}

// QueryAll fetches a multi-record API result in chunks, following the
// links.next URL of each page until no next link remains or the record
// count reaches limit (0 means unlimited).
func QueryAll[T any](ctx context.Context, c *Client, rawurl string, params url.Values, limit int) ([]T, error) {
	var results []T
	next := rawurl
	for next != "" {
		body, err := c.GetJSON(ctx, next, params)
		if err != nil {
			return nil, err
		}
		var env Envelope[[]T]
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", next, err)
		}
		results = append(results, env.Data...)
		if limit > 0 && len(results) >= limit {
			results = results[:limit]
			break
		}
		// the next link embeds the original query string, so explicit
		// params only apply to the first request
		params = nil
		next = env.Links["next"]
	}
	return results, nil
}
