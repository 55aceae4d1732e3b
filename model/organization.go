// Package model defines the data structures for the instrument registry.
package model

import "github.com/instrumentdb/pidinst-backend/util"

// Organization represents an institute or company. It is referenced as
// owner and/or manufacturer of instruments; when no catalog model exists
// the organization may be the manufacturer directly.
type Organization struct {
	Key     string `json:"_key,omitempty"`
	ID      string `json:"_id,omitempty"`
	Rev     string `json:"_rev,omitempty"`
	Name    string `json:"name"`
	Acronym string `json:"acronym,omitempty"`
	RorID   string `json:"ror_id,omitempty"`
}

// Normalize validates and canonicalizes the ROR ID. It is called on every
// write path, not just form submission, so programmatic writers are
// validated too.
func (o *Organization) Normalize() error {
	if o.RorID == "" {
		return nil
	}
	ror, err := util.ParseRorID(o.RorID)
	if err != nil {
		return err
	}
	o.RorID = ror
	return nil
}
