package model

// Type classifies the kind of an instrument, optionally linked to a
// controlled-vocabulary concept.
type Type struct {
	Key        string `json:"_key,omitempty"`
	ID         string `json:"_id,omitempty"`
	Rev        string `json:"_rev,omitempty"`
	Name       string `json:"name"`
	ConceptURL string `json:"concept_url,omitempty"`
}

// Variable is a measured or observed quantity, optionally linked to a
// controlled-vocabulary concept.
type Variable struct {
	Key        string `json:"_key,omitempty"`
	ID         string `json:"_id,omitempty"`
	Rev        string `json:"_rev,omitempty"`
	Name       string `json:"name"`
	ConceptURL string `json:"concept_url,omitempty"`
}

// InstrumentModel is a catalog entry shared by many instrument instances.
// Manufacturers, types and variables are resolved from edge collections.
type InstrumentModel struct {
	Key              string `json:"_key,omitempty"`
	ID               string `json:"_id,omitempty"`
	Rev              string `json:"_rev,omitempty"`
	Name             string `json:"name"`
	ConceptURL       string `json:"concept_url,omitempty"`
	Image            string `json:"image,omitempty"`
	ImageAttribution string `json:"image_attribution,omitempty"`

	Manufacturers []Organization `json:"-"`
	Types         []Type         `json:"-"`
	Variables     []Variable     `json:"-"`
}
