package instruments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/model"
	"github.com/instrumentdb/pidinst-backend/pidinst"
)

type memStore struct {
	instruments map[string]*model.Instrument
	savedPIDs   map[string]string
}

func (s *memStore) InstrumentByUUID(_ context.Context, uuid string) (*model.Instrument, error) {
	inst, ok := s.instruments[uuid]
	if !ok {
		return nil, database.ErrNotFound
	}
	return inst, nil
}

func (s *memStore) ListInstrumentUUIDs(_ context.Context) ([]string, error) {
	uuids := make([]string, 0, len(s.instruments))
	for uuid := range s.instruments {
		uuids = append(uuids, uuid)
	}
	return uuids, nil
}

func (s *memStore) SavePID(_ context.Context, uuid, pid string) error {
	if s.savedPIDs == nil {
		s.savedPIDs = map[string]string{}
	}
	s.savedPIDs[uuid] = pid
	return nil
}

const testUUID = "d8b717b8-16e7-476a-9f5e-95b2a93ddff6"

var testProjector = pidinst.Projector{BaseURL: "http://localhost:8000"}

func testApp() (*fiber.App, *memStore) {
	date := model.NewDate(2002, time.March, 18)
	end := model.NewDate(2011, time.January, 5)
	store := &memStore{instruments: map[string]*model.Instrument{
		testUUID: {
			UUID:         testUUID,
			PID:          "https://hdl.handle.net/21.12132/3.d8b717b816e7476a",
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
			Campaigns: []model.Campaign{{Begin: date, End: &end}},
		},
	}}

	app := fiber.New()
	app.Get("/instrument/:ref", GetInstrument(store, testProjector))
	return app, store
}

func doRequest(t *testing.T, app *fiber.App, path, accept string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGetInstrumentRedirectsToCanonicalUUID(t *testing.T) {
	app, _ := testApp()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"uppercase no dashes", "/instrument/D8B717B816E7476A9F5E95B2A93DDFF6", "/instrument/" + testUUID},
		{"uppercase with suffix", "/instrument/D8B717B816E7476A9F5E95B2A93DDFF6.html", "/instrument/" + testUUID + ".html"},
		{"mixed case dashed", "/instrument/D8B717B8-16e7-476a-9F5E-95B2A93DDFF6.json", "/instrument/" + testUUID + ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, tt.path, "")
			assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
			assert.Equal(t, tt.want, resp.Header.Get("Location"))
		})
	}
}

func TestGetInstrumentUnknown(t *testing.T) {
	app, _ := testApp()

	resp := doRequest(t, app, "/instrument/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, "/instrument/9a3a64f2-1b6f-4745-9a41-c7d758c8c496.json", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, "/instrument/"+testUUID+".asd", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetInstrumentJSON(t *testing.T) {
	app, _ := testApp()

	resp := doRequest(t, app, "/instrument/"+testUUID+".json", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get("Content-Type"))

	var doc map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "1.0", doc["SchemaVersion"])
	assert.Equal(t, "Test instrument", doc["Name"])
	assert.Equal(t, "http://localhost:8000/instrument/"+testUUID, doc["LandingPage"])
}

func TestGetInstrumentXML(t *testing.T) {
	app, _ := testApp()

	resp := doRequest(t, app, "/instrument/"+testUUID+".xml", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationXML, resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<instrument>")
	assert.Contains(t, string(body), "<name>Test instrument</name>")
}

func TestGetInstrumentHTML(t *testing.T) {
	app, _ := testApp()

	resp := doRequest(t, app, "/instrument/"+testUUID+".html", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Test instrument")
	assert.Contains(t, string(body), "https://hdl.handle.net/21.12132/3.d8b717b816e7476a")
}

func TestGetInstrumentContentNegotiation(t *testing.T) {
	app, _ := testApp()

	tests := []struct {
		name        string
		accept      string
		wantStatus  int
		wantContent string
	}{
		{"json", "application/json", http.StatusOK, fiber.MIMEApplicationJSON},
		{"xml", "application/xml", http.StatusOK, fiber.MIMEApplicationXML},
		{"text xml", "text/xml", http.StatusOK, fiber.MIMEApplicationXML},
		{"html", "text/html", http.StatusOK, fiber.MIMETextHTMLCharsetUTF8},
		{"wildcard", "*/*", http.StatusOK, fiber.MIMEApplicationJSON},
		{"unsupported", "image/png", http.StatusNotAcceptable, ""},
		{"missing", "", http.StatusNotAcceptable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "/instrument/"+testUUID, tt.accept)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantContent != "" {
				assert.Equal(t, tt.wantContent, resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestCreatePID(t *testing.T) {
	app, store := testApp()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"pid": "https://hdl.handle.net/21.12132/3.d8b717b816e7476a"})
	}))
	defer server.Close()

	sync := &pidinst.Synchronizer{
		Store:     store,
		Client:    pidinst.NewHandleClient(server.URL),
		Projector: testProjector,
	}
	app.Post("/api/v1/instrument/:uuid/create_pid", CreatePID(sync))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instrument/"+testUUID+"/create_pid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result PIDResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "https://hdl.handle.net/21.12132/3.d8b717b816e7476a", result.PID)
	assert.Equal(t, result.PID, store.savedPIDs[testUUID])
}

func TestCreatePIDUnknownInstrument(t *testing.T) {
	app, store := testApp()

	sync := &pidinst.Synchronizer{
		Store:     store,
		Client:    pidinst.NewHandleClient("http://localhost:1"),
		Projector: testProjector,
	}
	app.Post("/api/v1/instrument/:uuid/create_pid", CreatePID(sync))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instrument/9a3a64f2-1b6f-4745-9a41-c7d758c8c496/create_pid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePIDServiceFailure(t *testing.T) {
	app, store := testApp()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sync := &pidinst.Synchronizer{
		Store:     store,
		Client:    pidinst.NewHandleClient(server.URL),
		Projector: testProjector,
	}
	app.Post("/api/v1/instrument/:uuid/create_pid", CreatePID(sync))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instrument/"+testUUID+"/create_pid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Empty(t, store.savedPIDs)
}

func TestSplitSuffix(t *testing.T) {
	base, suffix := splitSuffix(testUUID + ".json")
	assert.Equal(t, testUUID, base)
	assert.Equal(t, "json", suffix)

	base, suffix = splitSuffix(testUUID)
	assert.Equal(t, testUUID, base)
	assert.Empty(t, suffix)
}
