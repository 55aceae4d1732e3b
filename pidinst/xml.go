package pidinst

import (
	"encoding/xml"
)

// The XML rendition mirrors the document sections in the same order with
// lowercase-first element names. Identifier fields become element
// attributes, and the instrument's own identifier comes first.

type xmlInstrument struct {
	XMLName              xml.Name                 `xml:"instrument"`
	Identifier           *xmlIdentifier           `xml:"identifier,omitempty"`
	SchemaVersion        string                   `xml:"schemaVersion"`
	LandingPage          string                   `xml:"landingPage"`
	Name                 string                   `xml:"name"`
	Description          string                   `xml:"description,omitempty"`
	Owners               *xmlOwners               `xml:"owners,omitempty"`
	Manufacturers        *xmlManufacturers        `xml:"manufacturers,omitempty"`
	Model                *xmlModel                `xml:"model,omitempty"`
	InstrumentTypes      *xmlInstrumentTypes      `xml:"instrumentTypes,omitempty"`
	MeasuredVariables    *xmlMeasuredVariables    `xml:"measuredVariables,omitempty"`
	Dates                *xmlDates                `xml:"dates,omitempty"`
	AlternateIdentifiers *xmlAlternateIdentifiers `xml:"alternateIdentifiers,omitempty"`
	RelatedIdentifiers   *xmlRelatedIdentifiers   `xml:"relatedIdentifiers,omitempty"`
}

type xmlIdentifier struct {
	Type  string `xml:"identifierType,attr"`
	Value string `xml:",chardata"`
}

type xmlOwners struct {
	Owners []xmlOwner `xml:"owner"`
}

type xmlOwner struct {
	Name       string              `xml:"ownerName"`
	Identifier *xmlOwnerIdentifier `xml:"ownerIdentifier,omitempty"`
}

type xmlOwnerIdentifier struct {
	Type  string `xml:"ownerIdentifierType,attr"`
	Value string `xml:",chardata"`
}

type xmlManufacturers struct {
	Manufacturers []xmlManufacturer `xml:"manufacturer"`
}

type xmlManufacturer struct {
	Name       string                     `xml:"manufacturerName"`
	Identifier *xmlManufacturerIdentifier `xml:"manufacturerIdentifier,omitempty"`
}

type xmlManufacturerIdentifier struct {
	Type  string `xml:"manufacturerIdentifierType,attr"`
	Value string `xml:",chardata"`
}

type xmlModel struct {
	Name       string              `xml:"modelName"`
	Identifier *xmlModelIdentifier `xml:"modelIdentifier,omitempty"`
}

type xmlModelIdentifier struct {
	Type  string `xml:"modelIdentifierType,attr"`
	Value string `xml:",chardata"`
}

type xmlInstrumentTypes struct {
	Types []xmlInstrumentType `xml:"instrumentType"`
}

type xmlInstrumentType struct {
	Name       string                       `xml:"instrumentTypeName"`
	Identifier *xmlInstrumentTypeIdentifier `xml:"instrumentTypeIdentifier,omitempty"`
}

type xmlInstrumentTypeIdentifier struct {
	Type  string `xml:"instrumentTypeIdentifierType,attr"`
	Value string `xml:",chardata"`
}

type xmlMeasuredVariables struct {
	Variables []string `xml:"measuredVariable"`
}

type xmlDates struct {
	Dates []xmlDate `xml:"date"`
}

type xmlDate struct {
	Type  string `xml:"dateType,attr"`
	Value string `xml:",chardata"`
}

type xmlAlternateIdentifiers struct {
	Identifiers []xmlAlternateIdentifier `xml:"alternateIdentifier"`
}

type xmlAlternateIdentifier struct {
	Type  string `xml:"alternateIdentifierType,attr"`
	Value string `xml:",chardata"`
}

type xmlRelatedIdentifiers struct {
	Identifiers []xmlRelatedIdentifier `xml:"relatedIdentifier"`
}

type xmlRelatedIdentifier struct {
	Type     string `xml:"relatedIdentifierType,attr"`
	Relation string `xml:"relationType,attr"`
	Value    string `xml:",chardata"`
}

// EncodeXML renders the document as an indented <instrument> element.
func (d Document) EncodeXML() ([]byte, error) {
	out := xmlInstrument{
		SchemaVersion: d.SchemaVersion,
		LandingPage:   d.LandingPage,
		Name:          d.Name,
		Description:   d.Description,
	}

	if d.Identifier != nil {
		out.Identifier = &xmlIdentifier{
			Type:  d.Identifier.IdentifierType,
			Value: d.Identifier.IdentifierValue,
		}
	}

	if len(d.Owners) > 0 {
		owners := &xmlOwners{}
		for _, entry := range d.Owners {
			owner := xmlOwner{Name: entry.Owner.OwnerName}
			if id := entry.Owner.OwnerIdentifier; id != nil {
				owner.Identifier = &xmlOwnerIdentifier{
					Type:  id.OwnerIdentifierType,
					Value: id.OwnerIdentifierValue,
				}
			}
			owners.Owners = append(owners.Owners, owner)
		}
		out.Owners = owners
	}

	if len(d.Manufacturers) > 0 {
		manufacturers := &xmlManufacturers{}
		for _, entry := range d.Manufacturers {
			manufacturer := xmlManufacturer{Name: entry.Manufacturer.ManufacturerName}
			if id := entry.Manufacturer.ManufacturerIdentifier; id != nil {
				manufacturer.Identifier = &xmlManufacturerIdentifier{
					Type:  id.ManufacturerIdentifierType,
					Value: id.ManufacturerIdentifierValue,
				}
			}
			manufacturers.Manufacturers = append(manufacturers.Manufacturers, manufacturer)
		}
		out.Manufacturers = manufacturers
	}

	if d.Model != nil {
		m := &xmlModel{Name: d.Model.ModelName}
		if id := d.Model.ModelIdentifier; id != nil {
			m.Identifier = &xmlModelIdentifier{
				Type:  id.ModelIdentifierType,
				Value: id.ModelIdentifierValue,
			}
		}
		out.Model = m
	}

	if len(d.InstrumentTypes) > 0 {
		types := &xmlInstrumentTypes{}
		for _, entry := range d.InstrumentTypes {
			t := xmlInstrumentType{Name: entry.InstrumentType.InstrumentTypeName}
			if id := entry.InstrumentType.InstrumentTypeIdentifier; id != nil {
				t.Identifier = &xmlInstrumentTypeIdentifier{
					Type:  id.InstrumentTypeIdentifierType,
					Value: id.InstrumentTypeIdentifierValue,
				}
			}
			types.Types = append(types.Types, t)
		}
		out.InstrumentTypes = types
	}

	if len(d.MeasuredVariables) > 0 {
		variables := &xmlMeasuredVariables{}
		for _, entry := range d.MeasuredVariables {
			variables.Variables = append(variables.Variables, entry.MeasuredVariable.VariableMeasured)
		}
		out.MeasuredVariables = variables
	}

	if len(d.Dates) > 0 {
		dates := &xmlDates{}
		for _, entry := range d.Dates {
			dates.Dates = append(dates.Dates, xmlDate{
				Type:  entry.Date.DateType,
				Value: entry.Date.Date,
			})
		}
		out.Dates = dates
	}

	if len(d.AlternateIdentifiers) > 0 {
		alternates := &xmlAlternateIdentifiers{}
		for _, entry := range d.AlternateIdentifiers {
			alternates.Identifiers = append(alternates.Identifiers, xmlAlternateIdentifier{
				Type:  entry.AlternateIdentifier.AlternateIdentifierType,
				Value: entry.AlternateIdentifier.AlternateIdentifierValue,
			})
		}
		out.AlternateIdentifiers = alternates
	}

	if len(d.RelatedIdentifiers) > 0 {
		related := &xmlRelatedIdentifiers{}
		for _, entry := range d.RelatedIdentifiers {
			related.Identifiers = append(related.Identifiers, xmlRelatedIdentifier{
				Type:     entry.RelatedIdentifier.RelatedIdentifierType,
				Relation: entry.RelatedIdentifier.RelationType,
				Value:    entry.RelatedIdentifier.RelatedIdentifierValue,
			})
		}
		out.RelatedIdentifiers = related
	}

	return xml.MarshalIndent(out, "", "  ")
}
