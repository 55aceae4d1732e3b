package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/google/uuid"

	"github.com/instrumentdb/pidinst-backend/model"
)

// ErrNotFound is returned when a lookup resolves no document.
var ErrNotFound = errors.New("not found")

// instrumentGraphQuery resolves an instrument and its one-hop graph in a
// single round-trip: owners, model with its manufacturer/type/variable
// sets, direct sets for model-less instruments, component edges in both
// directions, version neighbors and the time-ranged junctions.
const instrumentGraphQuery = `
	FOR i IN instrument
		FILTER i.uuid == @uuid
		LIMIT 1
		LET mdl = i.model_key ? DOCUMENT("model", i.model_key) : null
		RETURN {
			instrument: i,
			owners: (FOR v IN OUTBOUND i instrument2owner SORT v.name RETURN v),
			model: mdl,
			model_manufacturers: mdl ? (FOR v IN OUTBOUND mdl model2manufacturer SORT v.name RETURN v) : [],
			model_types: mdl ? (FOR v IN OUTBOUND mdl model2type SORT v.name RETURN v) : [],
			model_variables: mdl ? (FOR v IN OUTBOUND mdl model2variable SORT v.name RETURN v) : [],
			direct_manufacturers: (FOR v IN OUTBOUND i instrument2manufacturer SORT v.name RETURN v),
			direct_types: (FOR v IN OUTBOUND i instrument2type SORT v.name RETURN v),
			components: (FOR v IN OUTBOUND i instrument2component SORT v.name
				RETURN {_key: v._key, uuid: v.uuid, pid: v.pid, name: v.name}),
			parents: (FOR v IN INBOUND i instrument2component SORT v.name
				RETURN {_key: v._key, uuid: v.uuid, pid: v.pid, name: v.name}),
			new_version: i.new_version_key ? FIRST(
				FOR n IN instrument FILTER n._key == i.new_version_key
					RETURN {_key: n._key, uuid: n.uuid, pid: n.pid, name: n.name}) : null,
			previous_version: FIRST(
				FOR p IN instrument FILTER p.new_version_key == i._key
					RETURN {_key: p._key, uuid: p.uuid, pid: p.pid, name: p.name}),
			campaigns: (FOR loc, e IN OUTBOUND i campaign SORT e.begin
				RETURN MERGE(e, {location: loc})),
			contacts: (FOR per, e IN OUTBOUND i contact SORT e.begin
				RETURN MERGE(e, {person: per}))
		}
`

type instrumentRow struct {
	Instrument          model.Instrument       `json:"instrument"`
	Owners              []model.Organization   `json:"owners"`
	Model               *model.InstrumentModel `json:"model"`
	ModelManufacturers  []model.Organization   `json:"model_manufacturers"`
	ModelTypes          []model.Type           `json:"model_types"`
	ModelVariables      []model.Variable       `json:"model_variables"`
	DirectManufacturers []model.Organization   `json:"direct_manufacturers"`
	DirectTypes         []model.Type           `json:"direct_types"`
	Components          []model.InstrumentRef  `json:"components"`
	Parents             []model.InstrumentRef  `json:"parents"`
	NewVersion          *model.InstrumentRef   `json:"new_version"`
	PreviousVersion     *model.InstrumentRef   `json:"previous_version"`
	Campaigns           []model.Campaign       `json:"campaigns"`
	Contacts            []model.Contact        `json:"contacts"`
}

// InstrumentByUUID loads an instrument and its resolved one-hop graph.
// The UUID must already be in canonical form.
func InstrumentByUUID(ctx context.Context, db DBConnection, instrumentUUID string) (*model.Instrument, error) {
	cursor, err := db.Database.Query(ctx, instrumentGraphQuery, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"uuid": instrumentUUID},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, fmt.Errorf("instrument %s: %w", instrumentUUID, ErrNotFound)
	}

	var row instrumentRow
	if _, err := cursor.ReadDocument(ctx, &row); err != nil {
		return nil, err
	}

	inst := row.Instrument
	inst.Owners = row.Owners
	if row.Model != nil {
		row.Model.Manufacturers = row.ModelManufacturers
		row.Model.Types = row.ModelTypes
		row.Model.Variables = row.ModelVariables
		inst.Model = row.Model
	}
	inst.DirectManufacturers = row.DirectManufacturers
	inst.DirectTypes = row.DirectTypes
	inst.Components = row.Components
	inst.Parents = row.Parents
	inst.NewVersion = row.NewVersion
	inst.PreviousVersion = row.PreviousVersion
	inst.Campaigns = row.Campaigns
	inst.Contacts = row.Contacts

	return &inst, nil
}

// ListInstruments returns the flat instrument documents sorted by name.
func ListInstruments(ctx context.Context, db DBConnection) ([]model.Instrument, error) {
	cursor, err := db.Database.Query(ctx, `FOR i IN instrument SORT i.name RETURN i`, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var instruments []model.Instrument
	for cursor.HasMore() {
		var inst model.Instrument
		if _, err := cursor.ReadDocument(ctx, &inst); err != nil {
			return nil, err
		}
		instruments = append(instruments, inst)
	}
	return instruments, nil
}

// ListInstrumentUUIDs returns every instrument UUID, sorted by name so
// batch operations run in a stable order.
func ListInstrumentUUIDs(ctx context.Context, db DBConnection) ([]string, error) {
	cursor, err := db.Database.Query(ctx, `FOR i IN instrument SORT i.name RETURN i.uuid`, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var uuids []string
	for cursor.HasMore() {
		var u string
		if _, err := cursor.ReadDocument(ctx, &u); err != nil {
			return nil, err
		}
		uuids = append(uuids, u)
	}
	return uuids, nil
}

// CreateInstrument stores a new instrument document. The UUID is assigned
// here when absent and never changes afterwards; the PID stays empty until
// the synchronizer issues one.
func CreateInstrument(ctx context.Context, db DBConnection, inst *model.Instrument) error {
	if inst.UUID == "" {
		inst.UUID = uuid.NewString()
	}
	meta, err := db.Collections["instrument"].CreateDocument(ctx, inst)
	if err != nil {
		return err
	}
	inst.Key = meta.Key
	return nil
}

// SavePID persists an issued PID as a single atomic field update.
func SavePID(ctx context.Context, db DBConnection, instrumentUUID, pid string) error {
	cursor, err := db.Database.Query(ctx, `
		FOR i IN instrument
			FILTER i.uuid == @uuid
			UPDATE i WITH { pid: @pid } IN instrument
			RETURN NEW._key
	`, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"uuid": instrumentUUID, "pid": pid},
	})
	if err != nil {
		return err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return fmt.Errorf("instrument %s: %w", instrumentUUID, ErrNotFound)
	}
	return nil
}

// SaveOrganization normalizes and stores an organization. The ROR ID is
// validated here so every write path goes through the checksum.
func SaveOrganization(ctx context.Context, db DBConnection, org *model.Organization) error {
	if err := org.Normalize(); err != nil {
		return err
	}
	meta, err := db.Collections["organization"].CreateDocument(ctx, org)
	if err != nil {
		return err
	}
	org.Key = meta.Key
	return nil
}

// SavePerson normalizes and stores a person. The ORCID iD is validated
// here so every write path goes through the checksum.
func SavePerson(ctx context.Context, db DBConnection, person *model.Person) error {
	if err := person.Normalize(); err != nil {
		return err
	}
	meta, err := db.Collections["person"].CreateDocument(ctx, person)
	if err != nil {
		return err
	}
	person.Key = meta.Key
	return nil
}

type edgeDocument struct {
	From string `json:"_from"`
	To   string `json:"_to"`
}

// AddOwner links an owning organization to an instrument.
func AddOwner(ctx context.Context, db DBConnection, instrumentKey, organizationKey string) error {
	_, err := db.Collections["instrument2owner"].CreateDocument(ctx, edgeDocument{
		From: "instrument/" + instrumentKey,
		To:   "organization/" + organizationKey,
	})
	return err
}

// AddComponent records a directed "has component" edge. Self-loops are
// rejected here; longer cycles are tolerated because every read-side
// traversal is one hop.
func AddComponent(ctx context.Context, db DBConnection, parentKey, childKey string) error {
	if parentKey == childKey {
		return fmt.Errorf("instrument %s cannot be a component of itself", parentKey)
	}
	_, err := db.Collections["instrument2component"].CreateDocument(ctx, edgeDocument{
		From: "instrument/" + parentKey,
		To:   "instrument/" + childKey,
	})
	return err
}

// SetNewVersion points an instrument at its successor. An instrument
// cannot supersede itself.
func SetNewVersion(ctx context.Context, db DBConnection, oldKey, newKey string) error {
	if oldKey == newKey {
		return fmt.Errorf("instrument %s cannot be a new version of itself", oldKey)
	}
	_, err := db.Collections["instrument"].UpdateDocument(ctx, oldKey, map[string]interface{}{
		"new_version_key": newKey,
	})
	return err
}

// AddCampaign records a time-ranged deployment of an instrument at a
// location.
func AddCampaign(ctx context.Context, db DBConnection, instrumentKey, locationKey string, campaign model.Campaign) error {
	campaign.From = "instrument/" + instrumentKey
	campaign.To = "location/" + locationKey
	_, err := db.Collections["campaign"].CreateDocument(ctx, campaign)
	return err
}

// AddContact records a time-ranged association between an instrument and
// a person.
func AddContact(ctx context.Context, db DBConnection, instrumentKey, personKey string, contact model.Contact) error {
	contact.From = "instrument/" + instrumentKey
	contact.To = "person/" + personKey
	_, err := db.Collections["contact"].CreateDocument(ctx, contact)
	return err
}
