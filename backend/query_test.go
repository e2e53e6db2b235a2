package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/bpdavis86/planning-center-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

// pagedServer serves 7 records in pages of 3 with links.next chaining,
// JSON API style.
func pagedServer(t testing.TB) *httptest.Server {
	records := make([]testRecord, 7)
	for i := range records {
		records[i].Type = "Thing"
		records[i].ID = strconv.Itoa(i + 1)
		records[i].Attributes.Name = fmt.Sprintf("thing %d", i+1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := offset + 3
		if end > len(records) {
			end = len(records)
		}

		links := map[string]any{"self": "ignored"}
		if end < len(records) {
			links["next"] = fmt.Sprintf("http://%s/things?offset=%d", r.Host, end)
		} else {
			links["next"] = nil
		}

		body := map[string]any{
			"data":  records[offset:end],
			"links": links,
			"meta":  map[string]any{"total_count": len(records)},
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Error(err)
		}
	})
	mux.HandleFunc("/things/4", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"data": records[3]}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Error(err)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupQuery(t testing.TB) (*Client, *httptest.Server, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:backend/query")

	server := pagedServer(t)
	client, err := NewClient(context.Background(), ClientOptions{
		Endpoints: Endpoints{API: server.URL, Groups: server.URL, Login: server.URL},
	})
	if err != nil {
		t.Fatal(err)
	}
	return client, server, cleanup
}

func TestQueryOne(t *testing.T) {
	client, server, cleanup := setupQuery(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	record, err := QueryOne[testRecord](ctx, client, server.URL+"/things/4", nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "4", record.ID)
	require.Equal(t, "thing 4", record.Attributes.Name)
}

func TestQueryAllFollowsNextLinks(t *testing.T) {
	client, server, cleanup := setupQuery(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	records, err := QueryAll[testRecord](ctx, client, server.URL+"/things", nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 7)
	require.Equal(t, "1", records[0].ID)
	require.Equal(t, "7", records[6].ID)
}

func TestQueryAllLimit(t *testing.T) {
	client, server, cleanup := setupQuery(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	records, err := QueryAll[testRecord](ctx, client, server.URL+"/things", nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 5)
	require.Equal(t, "5", records[4].ID)
}

func TestQueryAllParams(t *testing.T) {
	client, server, cleanup := setupQuery(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	// params only apply to the first request; the next link carries its
	// own query string, so an offset param must not leak into page two
	params := url.Values{}
	params.Set("offset", "3")
	records, err := QueryAll[testRecord](ctx, client, server.URL+"/things", params, 0)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 4)
	require.Equal(t, "4", records[0].ID)
}
