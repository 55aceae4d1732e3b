// Package graphql assembles the GraphQL schema from the per-module
// type and query definitions.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/graphql/modules/instruments"
	"github.com/instrumentdb/pidinst-backend/pidinst"
)

var (
	db        database.DBConnection
	projector pidinst.Projector
)

// Init stores the shared database connection and projector used by the
// resolvers. Must be called before CreateSchema.
func Init(d database.DBConnection, p pidinst.Projector) {
	db = d
	projector = p
}

// CreateSchema builds the root query schema.
func CreateSchema() (graphql.Schema, error) {
	instrumentType := instruments.GetInstrumentType(projector)

	queryFields := graphql.Fields{}
	for name, field := range instruments.GetQueryFields(db, instrumentType) {
		queryFields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
