package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentdb/pidinst-backend/database"
)

func TestBroaderURIs(t *testing.T) {
	tests := []struct {
		name    string
		broader string
		want    []string
	}{
		{"absent", ``, nil},
		{"single", `{"uri": "http://vocab.test/lidar"}`, []string{"http://vocab.test/lidar"}},
		{"list", `[{"uri": "http://vocab.test/lidar"}, {"uri": "http://vocab.test/radar"}]`,
			[]string{"http://vocab.test/lidar", "http://vocab.test/radar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := concept{Broader: json.RawMessage(tt.broader)}
			assert.Equal(t, tt.want, c.broaderURIs())
		})
	}
}

// vocabServer serves a fixed concept hierarchy. Every concept URL returns
// the full graph, mirroring how SKOS endpoints include the broader chain.
func vocabServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	graph := []map[string]interface{}{
		{"uri": "http://vocab.test/instrumenttype", "prefLabel": map[string]string{"value": "Instrument type"}},
		{
			"uri":       "http://vocab.test/lidar",
			"prefLabel": map[string]string{"value": "Lidar"},
			"broader":   map[string]string{"uri": "http://vocab.test/instrumenttype"},
		},
		{
			"uri":       "http://vocab.test/dopplerlidar",
			"prefLabel": map[string]string{"value": "Doppler lidar"},
			"broader":   map[string]string{"uri": "http://vocab.test/lidar"},
		},
		{"uri": "http://vocab.test/color", "prefLabel": map[string]string{"value": "Color"}},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"graph": graph})
	}))
}

func TestFetchGraphCachesPerRun(t *testing.T) {
	var hits int
	server := vocabServer(t, &hits)
	defer server.Close()

	syncer := NewVocabSyncer(database.DBConnection{}, server.URL+"/instrumenttype", nil)
	syncer.HTTPClient = server.Client()

	ctx := context.Background()
	first, err := syncer.fetchGraph(ctx, server.URL+"/dopplerlidar")
	require.NoError(t, err)
	require.Len(t, first, 4)

	_, err = syncer.fetchGraph(ctx, server.URL+"/dopplerlidar")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestFetchGraphRetriesTransientFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"graph": [{"uri": "http://vocab.test/lidar"}]}`)
	}))
	defer server.Close()

	syncer := NewVocabSyncer(database.DBConnection{}, "", nil)
	syncer.HTTPClient = server.Client()

	graph, err := syncer.fetchGraph(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, graph, 1)
	assert.Equal(t, 3, hits)
}

func TestDescendsFrom(t *testing.T) {
	graph := []concept{
		{URI: "http://vocab.test/instrumenttype"},
		{URI: "http://vocab.test/lidar", Broader: json.RawMessage(`{"uri": "http://vocab.test/instrumenttype"}`)},
		{URI: "http://vocab.test/dopplerlidar", Broader: json.RawMessage(`{"uri": "http://vocab.test/lidar"}`)},
		{URI: "http://vocab.test/color"},
	}
	syncer := NewVocabSyncer(database.DBConnection{}, "http://vocab.test/instrumenttype", nil)
	syncer.graphs = map[string][]concept{
		"http://vocab.test/instrumenttype": graph,
		"http://vocab.test/lidar":          graph,
		"http://vocab.test/dopplerlidar":   graph,
		"http://vocab.test/color":          graph,
	}

	ctx := context.Background()

	ok, err := syncer.descendsFrom(ctx, "http://vocab.test/dopplerlidar", "http://vocab.test/instrumenttype", maxBroaderDepth)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = syncer.descendsFrom(ctx, "http://vocab.test/color", "http://vocab.test/instrumenttype", maxBroaderDepth)
	require.NoError(t, err)
	assert.False(t, ok)

	// Depth zero only matches the ancestor itself.
	ok, err = syncer.descendsFrom(ctx, "http://vocab.test/instrumenttype", "http://vocab.test/instrumenttype", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = syncer.descendsFrom(ctx, "http://vocab.test/lidar", "http://vocab.test/instrumenttype", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDescendsFromBoundsCyclicHierarchies(t *testing.T) {
	cyclic := []concept{
		{URI: "http://vocab.test/a", Broader: json.RawMessage(`{"uri": "http://vocab.test/b"}`)},
		{URI: "http://vocab.test/b", Broader: json.RawMessage(`{"uri": "http://vocab.test/a"}`)},
	}
	syncer := NewVocabSyncer(database.DBConnection{}, "http://vocab.test/instrumenttype", nil)
	syncer.graphs = map[string][]concept{
		"http://vocab.test/a": cyclic,
		"http://vocab.test/b": cyclic,
	}

	ok, err := syncer.descendsFrom(context.Background(), "http://vocab.test/a", "http://vocab.test/instrumenttype", maxBroaderDepth)
	require.NoError(t, err)
	assert.False(t, ok)
}
