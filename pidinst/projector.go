package pidinst

import (
	"github.com/instrumentdb/pidinst-backend/model"
)

// Projector derives PIDINST documents. BaseURL is the public base URL of
// the registry, embedded in landing pages.
type Projector struct {
	BaseURL string
}

// LandingPage is the canonical human-facing URL for an instrument UUID.
func (p Projector) LandingPage(uuid string) string {
	return p.BaseURL + "/instrument/" + uuid
}

// Project builds the metadata document for an instrument and its resolved
// one-hop graph. It is a pure function of its input: no storage access, no
// clock, no side effects.
func (p Projector) Project(inst *model.Instrument) Document {
	doc := Document{
		SchemaVersion: SchemaVersion,
		LandingPage:   p.LandingPage(inst.UUID),
		Name:          inst.Name,
		Description:   inst.Description,
	}

	for _, org := range inst.Owners {
		owner := Owner{OwnerName: org.Name}
		if org.RorID != "" {
			owner.OwnerIdentifier = &OwnerIdentifier{
				OwnerIdentifierValue: org.RorID,
				OwnerIdentifierType:  "ROR",
			}
		}
		doc.Owners = append(doc.Owners, OwnerEntry{Owner: owner})
	}

	classification := inst.Classify()

	for _, org := range classification.Manufacturers() {
		manufacturer := Manufacturer{ManufacturerName: org.Name}
		if org.RorID != "" {
			manufacturer.ManufacturerIdentifier = &ManufacturerIdentifier{
				ManufacturerIdentifierValue: org.RorID,
				ManufacturerIdentifierType:  "ROR",
			}
		}
		doc.Manufacturers = append(doc.Manufacturers, ManufacturerEntry{Manufacturer: manufacturer})
	}

	if m := classification.Model; m != nil {
		ref := &ModelRef{ModelName: m.Name}
		if m.ConceptURL != "" {
			ref.ModelIdentifier = &ModelIdentifier{
				ModelIdentifierValue: m.ConceptURL,
				ModelIdentifierType:  "URL",
			}
		}
		doc.Model = ref
	}

	if inst.PID != "" {
		doc.Identifier = &Identifier{
			IdentifierValue: inst.PID,
			IdentifierType:  "Handle",
		}
	}

	for _, t := range classification.Types() {
		instrumentType := InstrumentType{InstrumentTypeName: t.Name}
		if t.ConceptURL != "" {
			instrumentType.InstrumentTypeIdentifier = &InstrumentTypeIdentifier{
				InstrumentTypeIdentifierValue: t.ConceptURL,
				InstrumentTypeIdentifierType:  "URL",
			}
		}
		doc.InstrumentTypes = append(doc.InstrumentTypes, TypeEntry{InstrumentType: instrumentType})
	}

	for _, v := range classification.Variables() {
		doc.MeasuredVariables = append(doc.MeasuredVariables, VariableEntry{
			MeasuredVariable: MeasuredVariable{VariableMeasured: v.Name},
		})
	}

	if d := inst.CommissionDate(); d != nil {
		doc.Dates = append(doc.Dates, DateEntry{Date: DateValue{
			Date:     d.String(),
			DateType: "Commissioned",
		}})
	}
	if d := inst.DecommissionDate(); d != nil {
		doc.Dates = append(doc.Dates, DateEntry{Date: DateValue{
			Date:     d.String(),
			DateType: "DeCommissioned",
		}})
	}

	if inst.SerialNumber != "" {
		doc.AlternateIdentifiers = []AlternateIdentifierEntry{{
			AlternateIdentifier: AlternateIdentifier{
				AlternateIdentifierValue: inst.SerialNumber,
				AlternateIdentifierType:  "SerialNumber",
			},
		}}
	}

	doc.RelatedIdentifiers = p.relatedIdentifiers(inst)

	return doc
}

// relatedIdentifiers combines the instrument's explicit related-identifier
// records with entries synthesized from the component and version edges.
// The graph traversal is exactly one hop, so a cyclic component graph
// cannot loop the projection.
func (p Projector) relatedIdentifiers(inst *model.Instrument) []RelatedIdentifierEntry {
	var entries []RelatedIdentifierEntry

	for _, rel := range inst.RelatedIdentifiers {
		entries = append(entries, RelatedIdentifierEntry{RelatedIdentifier: RelatedIdentifier{
			RelatedIdentifierValue: rel.Identifier,
			RelatedIdentifierType:  rel.IdentifierType,
			RelationType:           rel.RelationType,
		}})
	}

	for _, ref := range inst.Components {
		entries = append(entries, p.relatedEntry(ref, "HasComponent"))
	}
	for _, ref := range inst.Parents {
		entries = append(entries, p.relatedEntry(ref, "IsComponentOf"))
	}
	if inst.NewVersion != nil {
		entries = append(entries, p.relatedEntry(*inst.NewVersion, "IsPreviousVersionOf"))
	}
	if inst.PreviousVersion != nil {
		entries = append(entries, p.relatedEntry(*inst.PreviousVersion, "IsNewVersionOf"))
	}

	return entries
}

// relatedEntry renders a neighbor reference, preferring its PID and falling
// back to the landing page URL while the neighbor has no PID yet.
func (p Projector) relatedEntry(ref model.InstrumentRef, relationType string) RelatedIdentifierEntry {
	value, identifierType := ref.PID, "Handle"
	if value == "" {
		value, identifierType = p.LandingPage(ref.UUID), "URL"
	}
	return RelatedIdentifierEntry{RelatedIdentifier: RelatedIdentifier{
		RelatedIdentifierValue: value,
		RelatedIdentifierType:  identifierType,
		RelationType:           relationType,
	}}
}
