// Package maps is a small Google Maps Platform client covering the
// two calls needed to turn a typed address into geocode data for group
// locations: place search and place-id geocoding.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("maps")

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

type Client struct {
	Http *resty.Client

	key     string
	baseURL string
}

type ClientOptions struct {
	APIKey string
	// BaseURL overrides the production API base, for tests.
	BaseURL string
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("a Google Maps API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)

	return &Client{
		Http:    client,
		key:     opts.APIKey,
		baseURL: opts.BaseURL,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("key", c.key).
		Get(c.baseURL + path)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("maps request %s failed with status %d", path, res.StatusCode())
	}
	return json.Unmarshal(res.Body(), out)
}

// FindPlaceFromText resolves a free-text query to candidate places.
// An empty slice means the query matched nothing.
func (c *Client) FindPlaceFromText(ctx context.Context, query string) ([]FindPlaceData, error) {
	ctx, span := tracer.Start(ctx, "maps:FindPlaceFromText")
	defer span.End()

	var body findPlaceResponse
	err := c.get(ctx, "/place/findplacefromtext/json", map[string]string{
		"input":     query,
		"inputtype": "textquery",
		"fields":    "formatted_address,name,place_id",
	}, &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find place request failed")
		return nil, err
	}
	if err := body.statusError(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body.Candidates, nil
}

// GeocodeFromPlaceID fetches the full geocode record for a place id,
// nil when the id resolves to nothing.
func (c *Client) GeocodeFromPlaceID(ctx context.Context, placeID string) (*GeocodeData, error) {
	ctx, span := tracer.Start(ctx, "maps:GeocodeFromPlaceID")
	defer span.End()

	var body geocodeResponse
	err := c.get(ctx, "/geocode/json", map[string]string{
		"place_id": placeID,
	}, &body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode request failed")
		return nil, err
	}
	if err := body.statusError(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, nil
	}
	return &body.Results[0], nil
}

// Geocode combines place search and geocoding: the first candidate for
// the query wins. Nil when nothing matched.
func (c *Client) Geocode(ctx context.Context, query string) (*GeocodeData, error) {
	candidates, err := c.FindPlaceFromText(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return c.GeocodeFromPlaceID(ctx, candidates[0].PlaceID)
}
