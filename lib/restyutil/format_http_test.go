package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bpdavis86/planning-center-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func newMemoryOutput() *memoryOutput {
	return &memoryOutput{messages: map[string]string{}}
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func (o *memoryOutput) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []string
	for _, m := range o.messages {
		out = append(out, m)
	}
	return out
}

func TestFormatRequestBodyNilReader(t *testing.T) {
	// resty gives bodyless requests a non-nil GetBody that yields a nil
	// reader
	req := &http.Request{
		GetBody: func() (io.ReadCloser, error) { return nil, nil },
	}
	require.Equal(t, "", formatRequestBody(req))
}

func TestInstrumentedGetTranscript(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/restyutil")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	}))
	defer server.Close()

	output := newMemoryOutput()
	client := resty.New()
	InstrumentClient(client, nil, output)

	res, err := client.R().Get(server.URL + "/page")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, http.StatusOK, res.StatusCode())

	transcripts := output.all()
	require.Len(t, transcripts, 1)
	require.Contains(t, transcripts[0], "---- REQUEST ----")
	require.Contains(t, transcripts[0], "GET "+server.URL+"/page")
	require.Contains(t, transcripts[0], "hello")
}

func TestInstrumentedPostTranscript(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/restyutil")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	output := newMemoryOutput()
	client := resty.New()
	InstrumentClient(client, nil, output)

	res, err := client.R().
		SetFormData(map[string]string{"group[name]": "New Group"}).
		Post(server.URL + "/groups")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, http.StatusOK, res.StatusCode())

	transcripts := output.all()
	require.Len(t, transcripts, 1)
	require.Contains(t, transcripts[0], "POST "+server.URL+"/groups")
	require.True(t, strings.Contains(transcripts[0], "group%5Bname%5D=New+Group"))
}
