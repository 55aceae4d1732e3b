package model

import "github.com/instrumentdb/pidinst-backend/util"

// Person represents an individual researcher, optionally carrying a
// validated ORCID iD and a login username for logbook edit permission.
type Person struct {
	Key       string `json:"_key,omitempty"`
	ID        string `json:"_id,omitempty"`
	Rev       string `json:"_rev,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	OrcidID   string `json:"orcid_id,omitempty"`
	Username  string `json:"username,omitempty"`
}

// FullName returns "First Last" with either part optional.
func (p *Person) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Normalize validates and canonicalizes the ORCID iD on every write path.
func (p *Person) Normalize() error {
	if p.OrcidID == "" {
		return nil
	}
	orcid, err := util.ParseOrcidID(p.OrcidID)
	if err != nil {
		return err
	}
	p.OrcidID = orcid
	return nil
}
