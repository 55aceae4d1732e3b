// Package instruments defines the GraphQL types for the instrument graph.
package instruments

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/instrumentdb/pidinst-backend/model"
	"github.com/instrumentdb/pidinst-backend/pidinst"
)

// OrganizationType represents an owning or manufacturing organization.
var OrganizationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Organization",
	Fields: graphql.Fields{
		"name":    &graphql.Field{Type: graphql.String},
		"acronym": &graphql.Field{Type: graphql.String},
		"ror_id":  &graphql.Field{Type: graphql.String},
	},
})

// InstrumentRefType represents a lightweight reference to another
// instrument, used for components and version links.
var InstrumentRefType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InstrumentRef",
	Fields: graphql.Fields{
		"uuid": &graphql.Field{Type: graphql.String},
		"pid":  &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
	},
})

// ModelRefType represents the instrument model assignment.
var ModelRefType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InstrumentModel",
	Fields: graphql.Fields{
		"name":        &graphql.Field{Type: graphql.String},
		"concept_url": &graphql.Field{Type: graphql.String},
	},
})

func dateString(d *model.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// GetInstrumentType returns the Instrument object type. The classification
// fields resolve against the model-level assignments when a model is set,
// falling back to the direct assignments otherwise.
func GetInstrumentType(projector pidinst.Projector) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Instrument",
		Fields: graphql.Fields{
			"uuid":          &graphql.Field{Type: graphql.String},
			"pid":           &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"description":   &graphql.Field{Type: graphql.String},
			"serial_number": &graphql.Field{Type: graphql.String},

			"landing_page": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return projector.LandingPage(inst.UUID), nil
			}},
			"owners": &graphql.Field{Type: graphql.NewList(OrganizationType), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return inst.Owners, nil
			}},
			"model": &graphql.Field{Type: ModelRefType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				if inst.Model == nil {
					return nil, nil
				}
				return *inst.Model, nil
			}},
			"manufacturers": &graphql.Field{Type: graphql.NewList(OrganizationType), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return inst.Classify().Manufacturers(), nil
			}},
			"instrument_types": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				types := inst.Classify().Types()
				names := make([]string, 0, len(types))
				for _, t := range types {
					names = append(names, t.Name)
				}
				return names, nil
			}},
			"measured_variables": &graphql.Field{Type: graphql.NewList(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				variables := inst.Classify().Variables()
				names := make([]string, 0, len(variables))
				for _, v := range variables {
					names = append(names, v.Name)
				}
				return names, nil
			}},

			"commission_date": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return dateString(inst.CommissionDate()), nil
			}},
			"decommission_date": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return dateString(inst.DecommissionDate()), nil
			}},

			"components": &graphql.Field{Type: graphql.NewList(InstrumentRefType), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return inst.Components, nil
			}},
			"parents": &graphql.Field{Type: graphql.NewList(InstrumentRefType), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return inst.Parents, nil
			}},
			"new_version": &graphql.Field{Type: InstrumentRefType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				if inst.NewVersion == nil {
					return nil, nil
				}
				return *inst.NewVersion, nil
			}},
			"previous_version": &graphql.Field{Type: InstrumentRefType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				if inst.PreviousVersion == nil {
					return nil, nil
				}
				return *inst.PreviousVersion, nil
			}},

			"citation": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				inst, _ := p.Source.(*model.Instrument)
				return inst.Citation(time.Now(), projector.LandingPage(inst.UUID)), nil
			}},
		},
	})
}
