package pidinst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/instrumentdb/pidinst-backend/model"
)

// Store is the storage surface the synchronizer needs: load a resolved
// instrument by UUID and persist an issued PID as a single field update.
type Store interface {
	InstrumentByUUID(ctx context.Context, uuid string) (*model.Instrument, error)
	ListInstrumentUUIDs(ctx context.Context) ([]string, error)
	SavePID(ctx context.Context, uuid, pid string) error
}

// schema terms assigned to the PIDINST fields in the ePIC handle registry.
var schemaTerms = map[string]string{
	"Identifier":           "21.T11148/8eb858ee0b12e8e463a5",
	"SchemaVersion":        "21.T11148/f5e68cc7718a6af2a96c",
	"LandingPage":          "21.T11148/9a15a4735d4bda329d80",
	"Name":                 "21.T11148/709a23220f2c3d64d1e1",
	"Owners":               "21.T11148/4eaec4bc0f1df68ab2a7",
	"Manufacturers":        "21.T11148/1f3e82ddf0697a497432",
	"Model":                "21.T11148/c1a0ec5ad347427f25d6",
	"Description":          "21.T11148/55f8ebc805e65b5b71dd",
	"InstrumentType":       "21.T11148/f76ad9d0324302fc47dd",
	"MeasuredVariables":    "21.T11148/72928b84e060d491ee41",
	"Dates":                "21.T11148/22c62082a4d2d9ae2602",
	"AlternateIdentifiers": "21.T11148/eb3c713572f681e6c4c3",
	"RelatedIdentifiers":   "21.T11148/4fe7cde52629b61e3b82",
}

// HandleValue is one data entry of the registration payload: the field's
// schema term and the field's own JSON encoding as a string.
type HandleValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// HandleRequest is the body posted to the handle service.
type HandleRequest struct {
	Type string        `json:"type"`
	UUID string        `json:"uuid"`
	URL  string        `json:"url"`
	Data []HandleValue `json:"data"`
}

// HandleData serializes the document's present fields in canonical order.
// Re-running it on an unchanged document yields identical content, which is
// what makes PID registration safe to retry.
func HandleData(doc Document) ([]HandleValue, error) {
	var data []HandleValue

	appendField := func(name string, value interface{}) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		data = append(data, HandleValue{Type: schemaTerms[name], Value: string(encoded)})
		return nil
	}

	if doc.Identifier != nil {
		if err := appendField("Identifier", doc.Identifier); err != nil {
			return nil, err
		}
	}
	if err := appendField("SchemaVersion", doc.SchemaVersion); err != nil {
		return nil, err
	}
	if err := appendField("LandingPage", doc.LandingPage); err != nil {
		return nil, err
	}
	if err := appendField("Name", doc.Name); err != nil {
		return nil, err
	}
	if len(doc.Owners) > 0 {
		if err := appendField("Owners", doc.Owners); err != nil {
			return nil, err
		}
	}
	if len(doc.Manufacturers) > 0 {
		if err := appendField("Manufacturers", doc.Manufacturers); err != nil {
			return nil, err
		}
	}
	if doc.Model != nil {
		if err := appendField("Model", doc.Model); err != nil {
			return nil, err
		}
	}
	if doc.Description != "" {
		if err := appendField("Description", doc.Description); err != nil {
			return nil, err
		}
	}
	if len(doc.InstrumentTypes) > 0 {
		if err := appendField("InstrumentType", doc.InstrumentTypes); err != nil {
			return nil, err
		}
	}
	if len(doc.MeasuredVariables) > 0 {
		if err := appendField("MeasuredVariables", doc.MeasuredVariables); err != nil {
			return nil, err
		}
	}
	if len(doc.Dates) > 0 {
		if err := appendField("Dates", doc.Dates); err != nil {
			return nil, err
		}
	}
	if len(doc.AlternateIdentifiers) > 0 {
		if err := appendField("AlternateIdentifiers", doc.AlternateIdentifiers); err != nil {
			return nil, err
		}
	}
	if len(doc.RelatedIdentifiers) > 0 {
		if err := appendField("RelatedIdentifiers", doc.RelatedIdentifiers); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// HandleClient posts registration payloads to the external PID service.
type HandleClient struct {
	ServiceURL string
	HTTPClient *http.Client
}

// NewHandleClient builds a client with a bounded request timeout.
func NewHandleClient(serviceURL string) *HandleClient {
	return &HandleClient{
		ServiceURL: serviceURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Register sends one registration request and returns the issued PID.
// A transport error, a non-2xx status or a malformed response body is a
// hard failure for the call.
func (c *HandleClient) Register(ctx context.Context, payload HandleRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ServiceURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pid service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("pid service returned %d: %s", resp.StatusCode, string(text))
	}

	var result struct {
		PID string `json:"pid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("pid service response malformed: %w", err)
	}
	if result.PID == "" {
		return "", fmt.Errorf("pid service response missing pid")
	}
	return result.PID, nil
}

// Synchronizer creates and refreshes external PID records.
type Synchronizer struct {
	Store     Store
	Client    *HandleClient
	Projector Projector
	Log       *zap.Logger
}

// CreateOrUpdatePID projects the instrument, registers the document with
// the handle service and persists the returned PID. It is idempotent: the
// same instrument state produces an identical request. On failure nothing
// is mutated.
func (s *Synchronizer) CreateOrUpdatePID(ctx context.Context, inst *model.Instrument) error {
	doc := s.Projector.Project(inst)
	data, err := HandleData(doc)
	if err != nil {
		return err
	}

	pid, err := s.Client.Register(ctx, HandleRequest{
		Type: "instrument",
		UUID: inst.UUID,
		URL:  doc.LandingPage,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("instrument %s: %w", inst.UUID, err)
	}

	if err := s.Store.SavePID(ctx, inst.UUID, pid); err != nil {
		return fmt.Errorf("instrument %s: persist pid: %w", inst.UUID, err)
	}
	inst.PID = pid

	if s.Log != nil {
		s.Log.Sugar().Infof("Registered PID %s for instrument %s", pid, inst.UUID)
	}
	return nil
}

// UpdateRelatedPIDs re-registers the records of the instrument's one-hop
// neighbors that already hold a PID: components, parents and both version
// neighbors. It never recurses further; the triggering workflow calls it
// once alongside CreateOrUpdatePID on the origin instrument.
func (s *Synchronizer) UpdateRelatedPIDs(ctx context.Context, inst *model.Instrument) error {
	var refs []model.InstrumentRef
	refs = append(refs, inst.Components...)
	refs = append(refs, inst.Parents...)
	if inst.NewVersion != nil {
		refs = append(refs, *inst.NewVersion)
	}
	if inst.PreviousVersion != nil {
		refs = append(refs, *inst.PreviousVersion)
	}

	for _, ref := range refs {
		if ref.PID == "" {
			continue
		}
		neighbor, err := s.Store.InstrumentByUUID(ctx, ref.UUID)
		if err != nil {
			return fmt.Errorf("load related instrument %s: %w", ref.UUID, err)
		}
		if err := s.CreateOrUpdatePID(ctx, neighbor); err != nil {
			return err
		}
	}
	return nil
}

// BatchFailure records one failed instrument in a batch synchronization.
type BatchFailure struct {
	UUID  string `json:"uuid"`
	Error string `json:"error"`
}

// BatchResult reports a batch synchronization: how many instruments were
// registered and which ones failed.
type BatchResult struct {
	Synchronized int            `json:"synchronized"`
	Failures     []BatchFailure `json:"failures,omitempty"`
}

// SyncAll re-registers every instrument sequentially. A failure on one
// instrument is recorded and does not prevent attempts on the others.
func (s *Synchronizer) SyncAll(ctx context.Context) (BatchResult, error) {
	uuids, err := s.Store.ListInstrumentUUIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, uuid := range uuids {
		inst, err := s.Store.InstrumentByUUID(ctx, uuid)
		if err == nil {
			err = s.CreateOrUpdatePID(ctx, inst)
		}
		if err != nil {
			result.Failures = append(result.Failures, BatchFailure{UUID: uuid, Error: err.Error()})
			if s.Log != nil {
				s.Log.Sugar().Warnf("PID sync failed for %s: %v", uuid, err)
			}
			continue
		}
		result.Synchronized++
	}
	return result, nil
}
