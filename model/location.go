package model

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Location is a named measurement site.
type Location struct {
	Key  string `json:"_key,omitempty"`
	ID   string `json:"_id,omitempty"`
	Rev  string `json:"_rev,omitempty"`
	Name string `json:"name"`
}

// Campaign is a time-ranged deployment of an instrument at a location,
// stored as an edge from instrument to location. A nil End means the
// deployment is ongoing.
type Campaign struct {
	Key      string    `json:"_key,omitempty"`
	From     string    `json:"_from,omitempty"`
	To       string    `json:"_to,omitempty"`
	Begin    Date      `json:"begin"`
	End      *Date     `json:"end,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Contact roles. A principal investigator is listed in the citation; extra
// contacts are not.
const (
	RolePI    = "pi"
	RoleExtra = "extra"
)

// Contact is a time-ranged association between an instrument and a person,
// stored as an edge from instrument to person. A nil End means the
// association is ongoing.
type Contact struct {
	Key    string  `json:"_key,omitempty"`
	From   string  `json:"_from,omitempty"`
	To     string  `json:"_to,omitempty"`
	Role   string  `json:"role"`
	Begin  Date    `json:"begin"`
	End    *Date   `json:"end,omitempty"`
	Person *Person `json:"person,omitempty"`
}

// Covers reports whether the contact's range contains the reference date.
func (c *Contact) Covers(at time.Time) bool {
	if at.Before(c.Begin.Time) {
		return false
	}
	return c.End == nil || !at.After(c.End.Time)
}
