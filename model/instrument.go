package model

import (
	"fmt"
	"strings"
	"time"
)

// RelatedIdentifier identifier-type vocabulary.
var RelatedIdentifierTypes = []string{
	"ARK", "arXiv", "bibcode", "DOI", "EAN13", "EISSN", "Handle", "IGSN",
	"ISBN", "ISSN", "ISTC", "LISSN", "PMID", "PURL", "RAiD", "RRID", "UPC",
	"URL", "URN", "w3id",
}

// RelatedIdentifier relation-type vocabulary.
var RelationTypes = []string{
	"IsDescribedBy", "IsNewVersionOf", "IsPreviousVersionOf", "HasComponent",
	"IsComponentOf", "References", "HasMetadata", "WasUsedIn",
	"IsIdenticalTo", "IsAttachedTo",
}

// RelatedIdentifier is an explicit typed external identifier attached to an
// instrument, embedded in the instrument document.
type RelatedIdentifier struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifier_type"`
	RelationType   string `json:"relation_type"`
}

// InstrumentRef is a lightweight reference to another instrument, carrying
// just enough to render a related-identifier entry for it.
type InstrumentRef struct {
	Key  string `json:"_key,omitempty"`
	UUID string `json:"uuid"`
	PID  string `json:"pid,omitempty"`
	Name string `json:"name,omitempty"`
}

// Instrument is the central entity. The UUID is assigned at creation and
// never changes; the PID stays empty until the first successful round-trip
// with the handle service. Relations resolved from edge collections carry
// a "-" JSON tag so the instrument document itself stays flat.
type Instrument struct {
	Key                string              `json:"_key,omitempty"`
	ID                 string              `json:"_id,omitempty"`
	Rev                string              `json:"_rev,omitempty"`
	UUID               string              `json:"uuid"`
	PID                string              `json:"pid,omitempty"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	SerialNumber       string              `json:"serial_number,omitempty"`
	Image              string              `json:"image,omitempty"`
	ImageAttribution   string              `json:"image_attribution,omitempty"`
	ModelKey           string              `json:"model_key,omitempty"`
	NewVersionKey      string              `json:"new_version_key,omitempty"`
	RelatedIdentifiers []RelatedIdentifier `json:"related_identifiers,omitempty"`

	Owners              []Organization   `json:"-"`
	Model               *InstrumentModel `json:"-"`
	DirectManufacturers []Organization   `json:"-"`
	DirectTypes         []Type           `json:"-"`
	Components          []InstrumentRef  `json:"-"`
	Parents             []InstrumentRef  `json:"-"`
	NewVersion          *InstrumentRef   `json:"-"`
	PreviousVersion     *InstrumentRef   `json:"-"`
	Campaigns           []Campaign       `json:"-"`
	Contacts            []Contact        `json:"-"`
}

// DirectClassification holds the manufacturer and type sets given directly
// on an instrument that has no catalog model.
type DirectClassification struct {
	Manufacturers []Organization
	Types         []Type
}

// Classification is the resolved model-vs-direct variant. Exactly one of
// the two fields is set. The write boundary rejects instruments with both
// a model and direct sets; should such a record exist anyway, the model
// branch is treated as authoritative.
type Classification struct {
	Model  *InstrumentModel
	Direct *DirectClassification
}

// Classify resolves the instrument's classification once, so consumers
// match on the variant instead of re-checking for a model at every access.
func (i *Instrument) Classify() Classification {
	if i.Model != nil {
		return Classification{Model: i.Model}
	}
	return Classification{Direct: &DirectClassification{
		Manufacturers: i.DirectManufacturers,
		Types:         i.DirectTypes,
	}}
}

// Manufacturers returns the effective manufacturer set.
func (c Classification) Manufacturers() []Organization {
	if c.Model != nil {
		return c.Model.Manufacturers
	}
	return c.Direct.Manufacturers
}

// Types returns the effective type set.
func (c Classification) Types() []Type {
	if c.Model != nil {
		return c.Model.Types
	}
	return c.Direct.Types
}

// Variables returns the measured variables, only available via a model.
func (c Classification) Variables() []Variable {
	if c.Model != nil {
		return c.Model.Variables
	}
	return nil
}

// EffectiveImage returns the instrument image, falling back to the model's.
func (i *Instrument) EffectiveImage() (image, attribution string) {
	if i.Image != "" {
		return i.Image, i.ImageAttribution
	}
	if i.Model != nil {
		return i.Model.Image, i.Model.ImageAttribution
	}
	return "", ""
}

// CommissionDate is the earliest campaign begin. Not a stored field.
func (i *Instrument) CommissionDate() *Date {
	var earliest *Date
	for idx := range i.Campaigns {
		b := i.Campaigns[idx].Begin
		if earliest == nil || b.Before(earliest.Time) {
			d := b
			earliest = &d
		}
	}
	return earliest
}

// DecommissionDate is the latest campaign end. An ongoing campaign (nil
// end) means the instrument is still deployed, so no decommission date.
func (i *Instrument) DecommissionDate() *Date {
	var latest *Date
	for idx := range i.Campaigns {
		e := i.Campaigns[idx].End
		if e == nil {
			return nil
		}
		if latest == nil || e.After(latest.Time) {
			d := *e
			latest = &d
		}
	}
	return latest
}

// CurrentPIs returns the principal investigators whose contact range covers
// the reference date. The date is a parameter so callers stay pure.
func (i *Instrument) CurrentPIs(at time.Time) []Person {
	var pis []Person
	for idx := range i.Contacts {
		c := &i.Contacts[idx]
		if c.Role == RolePI && c.Covers(at) && c.Person != nil {
			pis = append(pis, *c.Person)
		}
	}
	return pis
}

// Citation builds the human-readable citation string for the landing page:
// owners, current PIs, commission year, name, serial number and the PID
// (or the landing page URL before a PID is issued).
func (i *Instrument) Citation(at time.Time, landingPage string) string {
	var names []string
	for _, o := range i.Owners {
		names = append(names, o.Name)
	}
	for _, p := range i.CurrentPIs(at) {
		names = append(names, p.FullName())
	}
	var b strings.Builder
	if len(names) > 0 {
		b.WriteString(strings.Join(names, ", "))
	}
	if d := i.CommissionDate(); d != nil {
		fmt.Fprintf(&b, " (%d)", d.Year())
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(i.Name)
	if i.SerialNumber != "" {
		fmt.Fprintf(&b, ", serial number %s", i.SerialNumber)
	}
	b.WriteString(". ")
	if i.PID != "" {
		b.WriteString(i.PID)
	} else {
		b.WriteString(landingPage)
	}
	return b.String()
}
