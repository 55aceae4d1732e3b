package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/instrumentdb/pidinst-backend/database"
)

// maxBroaderDepth bounds the walk up the broader-concept hierarchy so a
// malformed vocabulary cannot loop the synchronizer.
const maxBroaderDepth = 10

// concept is one entry of a vocabulary concept graph.
type concept struct {
	URI       string `json:"uri"`
	PrefLabel struct {
		Value string `json:"value"`
	} `json:"prefLabel"`
	// Broader is a single concept reference or a list of them.
	Broader json.RawMessage `json:"broader"`
}

type conceptRef struct {
	URI string `json:"uri"`
}

// broaderURIs flattens the single-or-list broader field.
func (c concept) broaderURIs() []string {
	if len(c.Broader) == 0 {
		return nil
	}
	var list []conceptRef
	if err := json.Unmarshal(c.Broader, &list); err == nil {
		uris := make([]string, 0, len(list))
		for _, ref := range list {
			uris = append(uris, ref.URI)
		}
		return uris
	}
	var single conceptRef
	if err := json.Unmarshal(c.Broader, &single); err == nil && single.URI != "" {
		return []string{single.URI}
	}
	return nil
}

// VocabResult reports one vocabulary synchronization run.
type VocabResult struct {
	Synchronized int `json:"synchronized"`
	TypesCreated int `json:"types_created"`
}

// VocabSyncer refreshes the instrument types of every catalog model from
// the controlled vocabulary: a model's broader concepts that descend from
// the configured instrument-type root become its types.
type VocabSyncer struct {
	DB         database.DBConnection
	RootURL    string
	HTTPClient *http.Client
	Log        *zap.Logger

	graphs map[string][]concept // per-URL fetch cache for one run
}

// NewVocabSyncer builds a syncer with a bounded request timeout.
func NewVocabSyncer(db database.DBConnection, rootURL string, log *zap.Logger) *VocabSyncer {
	return &VocabSyncer{
		DB:         db,
		RootURL:    rootURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Log:        log,
	}
}

// fetchGraph retrieves a concept graph, retrying transient failures a few
// times and caching per URL for the duration of a run.
func (s *VocabSyncer) fetchGraph(ctx context.Context, conceptURL string) ([]concept, error) {
	if cached, ok := s.graphs[conceptURL]; ok {
		return cached, nil
	}

	var graph []concept
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, conceptURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body) // #nosec G104
			return fmt.Errorf("vocabulary returned %d for %s", resp.StatusCode, conceptURL)
		}

		var body struct {
			Graph []concept `json:"graph"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(err)
		}
		graph = body.Graph
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	if s.graphs == nil {
		s.graphs = make(map[string][]concept)
	}
	s.graphs[conceptURL] = graph
	return graph, nil
}

// descendsFrom walks the broader-concept hierarchy up to maxBroaderDepth
// and reports whether conceptURL descends from ancestorURL.
func (s *VocabSyncer) descendsFrom(ctx context.Context, conceptURL, ancestorURL string, depth int) (bool, error) {
	if conceptURL == ancestorURL {
		return true, nil
	}
	if depth == 0 {
		return false, nil
	}

	graph, err := s.fetchGraph(ctx, conceptURL)
	if err != nil {
		return false, err
	}
	current := findConcept(graph, conceptURL)
	if current == nil {
		return false, nil
	}

	for _, broaderURI := range current.broaderURIs() {
		if findConcept(graph, broaderURI) == nil {
			continue
		}
		ok, err := s.descendsFrom(ctx, broaderURI, ancestorURL, depth-1)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func findConcept(graph []concept, uri string) *concept {
	for idx := range graph {
		if graph[idx].URI == uri {
			return &graph[idx]
		}
	}
	return nil
}

// Sync refreshes every concept-linked model's types from the vocabulary.
func (s *VocabSyncer) Sync(ctx context.Context) (VocabResult, error) {
	s.graphs = make(map[string][]concept)

	models, err := database.ModelsWithConcept(ctx, s.DB)
	if err != nil {
		return VocabResult{}, err
	}

	var result VocabResult
	for _, m := range models {
		graph, err := s.fetchGraph(ctx, m.ConceptURL)
		if err != nil {
			return result, fmt.Errorf("model %s: %w", m.Name, err)
		}
		modelConcept := findConcept(graph, m.ConceptURL)
		if modelConcept == nil {
			return result, fmt.Errorf("model %s: concept %s missing from its own graph", m.Name, m.ConceptURL)
		}

		if err := database.ClearModelTypes(ctx, s.DB, m.Key); err != nil {
			return result, err
		}

		for _, broaderURI := range modelConcept.broaderURIs() {
			isType, err := s.descendsFrom(ctx, broaderURI, s.RootURL, maxBroaderDepth)
			if err != nil {
				return result, err
			}
			if !isType {
				continue
			}
			typeConcept := findConcept(graph, broaderURI)
			if typeConcept == nil {
				continue
			}

			stored, created, err := database.UpsertTypeConcept(ctx, s.DB, typeConcept.URI, typeConcept.PrefLabel.Value)
			if err != nil {
				return result, err
			}
			if created {
				result.TypesCreated++
				if s.Log != nil {
					s.Log.Sugar().Infof("Created type %s", stored.Name)
				}
			}
			if err := database.AddModelType(ctx, s.DB, m.Key, stored.Key); err != nil {
				return result, err
			}
		}
		result.Synchronized++
	}

	if s.Log != nil {
		s.Log.Sugar().Infof("Synchronized %d models", result.Synchronized)
	}
	return result, nil
}
