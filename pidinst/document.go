// Package pidinst derives PIDINST metadata documents from the instrument
// graph, renders them as JSON, XML and HTML, and keeps the external handle
// records synchronized.
package pidinst

import (
	"bytes"
	"encoding/json"
)

// SchemaVersion is the PIDINST schema version this backend emits.
const SchemaVersion = "1.0"

// Document is the PIDINST metadata record for one instrument. Field order
// fixes the JSON key order; absent sections are omitted rather than
// serialized as nulls or empty arrays. Both the JSON and XML encoders
// consume this tree, so presence logic lives here once.
type Document struct {
	SchemaVersion        string                     `json:"SchemaVersion"`
	LandingPage          string                     `json:"LandingPage"`
	Name                 string                     `json:"Name"`
	Owners               []OwnerEntry               `json:"Owners,omitempty"`
	Manufacturers        []ManufacturerEntry        `json:"Manufacturers,omitempty"`
	Model                *ModelRef                  `json:"Model,omitempty"`
	Identifier           *Identifier                `json:"Identifier,omitempty"`
	Description          string                     `json:"Description,omitempty"`
	InstrumentTypes      []TypeEntry                `json:"InstrumentType,omitempty"`
	MeasuredVariables    []VariableEntry            `json:"MeasuredVariables,omitempty"`
	Dates                []DateEntry                `json:"Dates,omitempty"`
	AlternateIdentifiers []AlternateIdentifierEntry `json:"AlternateIdentifiers,omitempty"`
	RelatedIdentifiers   []RelatedIdentifierEntry   `json:"RelatedIdentifiers,omitempty"`
}

// Identifier is the instrument's own persistent identifier.
type Identifier struct {
	IdentifierValue string `json:"identifierValue"`
	IdentifierType  string `json:"identifierType"`
}

// OwnerEntry wraps one owner for the Owners list.
type OwnerEntry struct {
	Owner Owner `json:"owner"`
}

// Owner names an owning organization, with its ROR ID when known.
type Owner struct {
	OwnerName       string           `json:"ownerName"`
	OwnerIdentifier *OwnerIdentifier `json:"ownerIdentifier,omitempty"`
}

// OwnerIdentifier is an owner's external registry identifier.
type OwnerIdentifier struct {
	OwnerIdentifierValue string `json:"ownerIdentifierValue"`
	OwnerIdentifierType  string `json:"ownerIdentifierType"`
}

// ManufacturerEntry wraps one manufacturer for the Manufacturers list.
type ManufacturerEntry struct {
	Manufacturer Manufacturer `json:"manufacturer"`
}

// Manufacturer names a manufacturing organization.
type Manufacturer struct {
	ManufacturerName       string                  `json:"manufacturerName"`
	ManufacturerIdentifier *ManufacturerIdentifier `json:"manufacturerIdentifier,omitempty"`
}

// ManufacturerIdentifier is a manufacturer's external registry identifier.
type ManufacturerIdentifier struct {
	ManufacturerIdentifierValue string `json:"manufacturerIdentifierValue"`
	ManufacturerIdentifierType  string `json:"manufacturerIdentifierType"`
}

// ModelRef names the catalog model, with its vocabulary concept when known.
type ModelRef struct {
	ModelName       string           `json:"modelName"`
	ModelIdentifier *ModelIdentifier `json:"modelIdentifier,omitempty"`
}

// ModelIdentifier is the model's vocabulary concept reference.
type ModelIdentifier struct {
	ModelIdentifierValue string `json:"modelIdentifierValue"`
	ModelIdentifierType  string `json:"modelIdentifierType"`
}

// TypeEntry wraps one instrument type for the InstrumentType list.
type TypeEntry struct {
	InstrumentType InstrumentType `json:"instrumentType"`
}

// InstrumentType names a classification, with its vocabulary concept.
type InstrumentType struct {
	InstrumentTypeName       string                    `json:"instrumentTypeName"`
	InstrumentTypeIdentifier *InstrumentTypeIdentifier `json:"instrumentTypeIdentifier,omitempty"`
}

// InstrumentTypeIdentifier is a type's vocabulary concept reference.
type InstrumentTypeIdentifier struct {
	InstrumentTypeIdentifierValue string `json:"instrumentTypeIdentifierValue"`
	InstrumentTypeIdentifierType  string `json:"instrumentTypeIdentifierType"`
}

// VariableEntry wraps one measured variable.
type VariableEntry struct {
	MeasuredVariable MeasuredVariable `json:"measuredVariable"`
}

// MeasuredVariable names a measured or observed quantity.
type MeasuredVariable struct {
	VariableMeasured string `json:"variableMeasured"`
}

// DateEntry wraps one lifecycle date.
type DateEntry struct {
	Date DateValue `json:"date"`
}

// DateValue is a typed lifecycle date (Commissioned / DeCommissioned).
type DateValue struct {
	Date     string `json:"date"`
	DateType string `json:"dateType"`
}

// AlternateIdentifierEntry wraps one alternate identifier.
type AlternateIdentifierEntry struct {
	AlternateIdentifier AlternateIdentifier `json:"alternateIdentifier"`
}

// AlternateIdentifier is a non-persistent identifier such as a serial
// number.
type AlternateIdentifier struct {
	AlternateIdentifierValue string `json:"alternateIdentifierValue"`
	AlternateIdentifierType  string `json:"alternateIdentifierType"`
}

// RelatedIdentifierEntry wraps one related identifier.
type RelatedIdentifierEntry struct {
	RelatedIdentifier RelatedIdentifier `json:"relatedIdentifier"`
}

// RelatedIdentifier points at a related record with a typed relation.
type RelatedIdentifier struct {
	RelatedIdentifierValue string `json:"relatedIdentifierValue"`
	RelatedIdentifierType  string `json:"relatedIdentifierType"`
	RelationType           string `json:"relationType"`
}

// EncodeJSON renders the document as indented JSON with the canonical key
// order. Projecting an unmodified instrument twice yields byte-identical
// output.
func (d Document) EncodeJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
