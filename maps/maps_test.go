package maps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bpdavis86/planning-center-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (*Client, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:maps")

	mux := http.NewServeMux()
	mux.HandleFunc("/place/findplacefromtext/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
			return
		}
		if r.URL.Query().Get("input") == "nowhere" {
			fmt.Fprint(w, `{"status":"ZERO_RESULTS","candidates":[]}`)
			return
		}
		fmt.Fprint(w, `{"status":"OK","candidates":[{
			"formatted_address": "456 Oak Ave, Springfield, IL 62701, USA",
			"name": "Oak House",
			"place_id": "place-abc"
		}]}`)
	})
	mux.HandleFunc("/geocode/json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("place_id") != "place-abc" {
			fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
			return
		}
		fmt.Fprint(w, `{"status":"OK","results":[{
			"address_components": [
				{"long_name": "456", "short_name": "456", "types": ["street_number"]},
				{"long_name": "Oak Avenue", "short_name": "Oak Ave", "types": ["route"]}
			],
			"formatted_address": "456 Oak Ave, Springfield, IL 62701, USA",
			"geometry": {
				"location": {"lat": 39.791234, "lng": -89.644321},
				"location_type": "ROOFTOP",
				"viewport": {
					"northeast": {"lat": 39.7926, "lng": -89.6430},
					"southwest": {"lat": 39.7899, "lng": -89.6457}
				}
			},
			"place_id": "place-abc",
			"types": ["street_address"]
		}]}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	return client, cleanup
}

func TestFindPlaceFromText(t *testing.T) {
	client, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	candidates, err := client.FindPlaceFromText(ctx, "oak house springfield")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, candidates, 1)
	require.Equal(t, "place-abc", candidates[0].PlaceID)
	require.Equal(t, "Oak House", candidates[0].Name)

	candidates, err = client.FindPlaceFromText(ctx, "nowhere")
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, candidates)
}

func TestGeocodeFromPlaceID(t *testing.T) {
	client, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	geocode, err := client.GeocodeFromPlaceID(ctx, "place-abc")
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, geocode)
	require.Equal(t, 39.791234, geocode.Geometry.Location.Lat)
	require.Len(t, geocode.AddressComponents, 2)
	require.Equal(t, []string{"route"}, geocode.AddressComponents[1].Types)

	geocode, err = client.GeocodeFromPlaceID(ctx, "no-such-place")
	if err != nil {
		t.Fatal(err)
	}
	require.Nil(t, geocode)
}

func TestGeocode(t *testing.T) {
	client, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	geocode, err := client.Geocode(ctx, "oak house springfield")
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, geocode)
	require.Equal(t, "456 Oak Ave, Springfield, IL 62701, USA", geocode.FormattedAddress)

	geocode, err = client.Geocode(ctx, "nowhere")
	if err != nil {
		t.Fatal(err)
	}
	require.Nil(t, geocode)
}

func TestAPIKeyError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:maps")
	defer cleanup()

	_, err := NewClient(ClientOptions{})
	require.Error(t, err)
}

func TestStatusError(t *testing.T) {
	client, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	client.key = "wrong-key"
	_, err := client.FindPlaceFromText(ctx, "anything")
	require.ErrorContains(t, err, "REQUEST_DENIED")
}
