package pidinst

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentdb/pidinst-backend/model"
)

// memStore is an in-memory Store for synchronizer tests.
type memStore struct {
	instruments map[string]*model.Instrument
	order       []string
	savedPIDs   map[string]string
}

func newMemStore(instruments ...*model.Instrument) *memStore {
	s := &memStore{
		instruments: map[string]*model.Instrument{},
		savedPIDs:   map[string]string{},
	}
	for _, inst := range instruments {
		s.instruments[inst.UUID] = inst
		s.order = append(s.order, inst.UUID)
	}
	return s
}

func (s *memStore) InstrumentByUUID(_ context.Context, uuid string) (*model.Instrument, error) {
	inst, ok := s.instruments[uuid]
	if !ok {
		return nil, assert.AnError
	}
	return inst, nil
}

func (s *memStore) ListInstrumentUUIDs(_ context.Context) ([]string, error) {
	return s.order, nil
}

func (s *memStore) SavePID(_ context.Context, uuid, pid string) error {
	s.savedPIDs[uuid] = pid
	return nil
}

func handleService(t *testing.T, requests *[]HandleRequest, failFor string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req HandleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if failFor != "" && req.UUID == failFor {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		*requests = append(*requests, req)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"pid": "https://hdl.handle.net/21.12132/3." + req.UUID[:8],
		})
	}))
}

func newTestSynchronizer(store Store, serviceURL string) *Synchronizer {
	return &Synchronizer{
		Store:     store,
		Client:    NewHandleClient(serviceURL),
		Projector: testProjector,
	}
}

func TestCreateOrUpdatePID(t *testing.T) {
	inst := &model.Instrument{
		UUID:         "8fd884df-6896-4bae-a72f-b6260b5b8744",
		Name:         "Test instrument",
		SerialNumber: "836514404680691",
		Owners:       []model.Organization{{Name: "Test owner"}},
		Model: &model.InstrumentModel{
			Name:          "Test model",
			ConceptURL:    "http://vocab.test/testmodel",
			Manufacturers: []model.Organization{{Name: "Test manufacturer"}},
			Types:         []model.Type{{Name: "Test type", ConceptURL: "http://vocab.test/testtype"}},
			Variables:     []model.Variable{{Name: "Test variable"}},
		},
		Campaigns: []model.Campaign{{
			Begin: model.NewDate(2002, time.March, 18),
			End:   datePtr(2011, time.January, 5),
		}},
	}
	store := newMemStore(inst)

	var requests []HandleRequest
	server := handleService(t, &requests, "")
	defer server.Close()

	sync := newTestSynchronizer(store, server.URL)
	require.NoError(t, sync.CreateOrUpdatePID(context.Background(), inst))

	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "instrument", req.Type)
	assert.Equal(t, "8fd884df-6896-4bae-a72f-b6260b5b8744", req.UUID)
	assert.Equal(t, "http://localhost:8000/instrument/8fd884df-6896-4bae-a72f-b6260b5b8744", req.URL)

	terms := make([]string, 0, len(req.Data))
	for _, entry := range req.Data {
		terms = append(terms, entry.Type)
	}
	assert.Equal(t, []string{
		"21.T11148/f5e68cc7718a6af2a96c", // SchemaVersion
		"21.T11148/9a15a4735d4bda329d80", // LandingPage
		"21.T11148/709a23220f2c3d64d1e1", // Name
		"21.T11148/4eaec4bc0f1df68ab2a7", // Owners
		"21.T11148/1f3e82ddf0697a497432", // Manufacturers
		"21.T11148/c1a0ec5ad347427f25d6", // Model
		"21.T11148/f76ad9d0324302fc47dd", // InstrumentType
		"21.T11148/72928b84e060d491ee41", // MeasuredVariables
		"21.T11148/22c62082a4d2d9ae2602", // Dates
		"21.T11148/eb3c713572f681e6c4c3", // AlternateIdentifiers
	}, terms)

	assert.Equal(t, `"1.0"`, req.Data[0].Value)
	assert.Equal(t, `"Test instrument"`, req.Data[2].Value)
	assert.Equal(t, `[{"owner":{"ownerName":"Test owner"}}]`, req.Data[3].Value)
	assert.Equal(t,
		`[{"date":{"date":"2002-03-18","dateType":"Commissioned"}},{"date":{"date":"2011-01-05","dateType":"DeCommissioned"}}]`,
		req.Data[8].Value)

	wantPID := "https://hdl.handle.net/21.12132/3.8fd884df"
	assert.Equal(t, wantPID, store.savedPIDs[inst.UUID])
	assert.Equal(t, wantPID, inst.PID)
}

func TestCreateOrUpdatePIDIncludesIdentifierOnReRegistration(t *testing.T) {
	inst := testInstrument()
	store := newMemStore(inst)

	var requests []HandleRequest
	server := handleService(t, &requests, "")
	defer server.Close()

	sync := newTestSynchronizer(store, server.URL)
	require.NoError(t, sync.CreateOrUpdatePID(context.Background(), inst))

	require.NotEmpty(t, requests)
	first := requests[0].Data[0]
	assert.Equal(t, "21.T11148/8eb858ee0b12e8e463a5", first.Type)
	assert.Equal(t,
		`{"identifierValue":"https://hdl.handle.net/21.12132/3.d8b717b816e7476a","identifierType":"Handle"}`,
		first.Value)
}

func TestCreateOrUpdatePIDFailureMutatesNothing(t *testing.T) {
	inst := &model.Instrument{UUID: "8fd884df-6896-4bae-a72f-b6260b5b8744", Name: "Test instrument"}
	store := newMemStore(inst)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sync := newTestSynchronizer(store, server.URL)
	err := sync.CreateOrUpdatePID(context.Background(), inst)
	require.Error(t, err)

	assert.Empty(t, inst.PID)
	assert.Empty(t, store.savedPIDs)
}

func TestUpdateRelatedPIDsSkipsNeighborsWithoutPID(t *testing.T) {
	withPID := testInstrument()
	withoutPID := &model.Instrument{UUID: "eab72e88-6cb4-4902-9201-7b9b5e9de9b3", Name: "Pressure sensor"}
	parent := &model.Instrument{
		UUID: "90845957-31eb-4900-89a5-78696ec0453d",
		Name: "My weather station",
		Components: []model.InstrumentRef{
			{UUID: withPID.UUID, PID: withPID.PID},
			{UUID: withoutPID.UUID},
		},
	}
	store := newMemStore(parent, withPID, withoutPID)

	var requests []HandleRequest
	server := handleService(t, &requests, "")
	defer server.Close()

	sync := newTestSynchronizer(store, server.URL)
	require.NoError(t, sync.UpdateRelatedPIDs(context.Background(), parent))

	require.Len(t, requests, 1)
	assert.Equal(t, withPID.UUID, requests[0].UUID)
}

func TestSyncAllContinuesOnFailure(t *testing.T) {
	failing := &model.Instrument{UUID: "a13475b3-5ed3-4ea3-ba81-0eaa884f11ab", Name: "Failing"}
	working := &model.Instrument{UUID: "90845957-31eb-4900-89a5-78696ec0453d", Name: "Working"}
	store := newMemStore(failing, working)

	var requests []HandleRequest
	server := handleService(t, &requests, failing.UUID)
	defer server.Close()

	sync := newTestSynchronizer(store, server.URL)
	result, err := sync.SyncAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synchronized)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, failing.UUID, result.Failures[0].UUID)
	assert.NotEmpty(t, working.PID)
	assert.Empty(t, failing.PID)
}

func TestHandleClientRejectsMissingPID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewHandleClient(server.URL)
	_, err := client.Register(context.Background(), HandleRequest{Type: "instrument"})
	assert.ErrorContains(t, err, "missing pid")
}
