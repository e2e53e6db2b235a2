package people

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/bpdavis86/planning-center-backend/backend"
	"github.com/bpdavis86/planning-center-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const personJSON = `{
	"type": "Person", "id": "555",
	"attributes": {
		"accounting_administrator": false,
		"anniversary": null,
		"avatar": "https://avatars.example.com/555",
		"birthdate": "1990-06-15",
		"can_create_forms": false,
		"can_email_lists": false,
		"child": false,
		"created_at": "2024-01-01T00:00:00Z",
		"demographic_avatar_url": "https://avatars.example.com/generic",
		"directory_status": "no_access",
		"first_name": "Alice",
		"gender": null,
		"given_name": null,
		"grade": null,
		"graduation_year": null,
		"inactivated_at": null,
		"last_name": "Smith",
		"medical_notes": null,
		"membership": "Member",
		"middle_name": null,
		"name": "Alice Smith",
		"nickname": null,
		"passed_background_check": true,
		"people_permissions": null,
		"remote_id": null,
		"school_type": null,
		"site_administrator": false,
		"status": "active",
		"updated_at": "2024-03-01T00:00:00Z"
	}
}`

type fakeDirectory struct {
	server *httptest.Server

	mu        sync.Mutex
	lastQuery url.Values
}

func (d *fakeDirectory) query() url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastQuery
}

func setup(t testing.TB) (*Provider, *fakeDirectory, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:people")

	directory := &fakeDirectory{}
	mux := http.NewServeMux()
	mux.HandleFunc("/people/v2/people", func(w http.ResponseWriter, r *http.Request) {
		directory.mu.Lock()
		directory.lastQuery = r.URL.Query()
		directory.mu.Unlock()
		if r.URL.Query().Get("where[search_name]") == "Alice" ||
			r.URL.Query().Get("where[last_name]") == "Smith" {
			fmt.Fprintf(w, `{"data":[%s],"links":{"next":null},"meta":{"total_count":1}}`, personJSON)
			return
		}
		fmt.Fprint(w, `{"data":[],"links":{"next":null},"meta":{"total_count":0}}`)
	})
	mux.HandleFunc("/people/v2/people/555", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":%s}`, personJSON)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	directory.server = server

	client, err := backend.NewClient(context.Background(), backend.ClientOptions{
		Endpoints: backend.Endpoints{API: server.URL, Groups: server.URL, Login: server.URL},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewProvider(client), directory, cleanup
}

func TestQueryExpressionValues(t *testing.T) {
	lastName := "Smith"
	child := false
	grade := 8
	birthdate := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	params := QueryExpression{
		LastName:  &lastName,
		Child:     &child,
		Grade:     &grade,
		Birthdate: &birthdate,
	}.Values()

	require.Equal(t, "Smith", params.Get("where[last_name]"))
	require.Equal(t, "false", params.Get("where[child]"))
	require.Equal(t, "8", params.Get("where[grade]"))
	require.Equal(t, "1990-06-15", params.Get("where[birthdate]"))
	// nil fields stay out of the query entirely
	require.Len(t, params, 4)
}

func TestSearch(t *testing.T) {
	provider, _, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	matches, err := provider.Search(ctx, "Alice")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, matches, 1)
	require.Equal(t, "Alice Smith", matches[0].Attributes.Name)
	require.Equal(t, "active", matches[0].Attributes.Status)

	matches, err = provider.Search(ctx, "Nobody")
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, matches)
}

func TestQuery(t *testing.T) {
	provider, directory, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	lastName := "Smith"
	matches, err := provider.Query(ctx, QueryExpression{LastName: &lastName}, QueryOptions{
		PerPage: 25,
		Offset:  50,
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, matches, 1)

	// paging knobs ride along with the filter expression
	query := directory.query()
	require.Equal(t, "Smith", query.Get("where[last_name]"))
	require.Equal(t, "25", query.Get("per_page"))
	require.Equal(t, "50", query.Get("offset"))

	attrs := matches[0].Attributes
	require.NotNil(t, attrs.Birthdate)
	require.Equal(t, "1990-06-15", *attrs.Birthdate)
	require.True(t, attrs.PassedBackgroundCheck)
}

func TestGet(t *testing.T) {
	provider, _, cleanup := setup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	person, err := provider.Get(ctx, 555)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "555", person.ID)
	require.Equal(t, "Alice Smith", person.Attributes.Name)

	_, err = provider.Get(ctx, 999)
	require.Error(t, err)
	require.True(t, backend.IsNotFound(err))
}
