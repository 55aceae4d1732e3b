// Package instruments defines the GraphQL queries for instrument data.
package instruments

import (
	"github.com/graphql-go/graphql"

	"github.com/instrumentdb/pidinst-backend/database"
)

// GetQueryFields returns the instrument queries to be mounted in the root schema.
func GetQueryFields(db database.DBConnection, instrumentType *graphql.Object) graphql.Fields {
	return graphql.Fields{
		"instrument": &graphql.Field{
			Type: instrumentType,
			Args: graphql.FieldConfigArgument{
				"uuid": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveInstrument(p, db)
			},
		},
		"instruments": &graphql.Field{
			Type: graphql.NewList(InstrumentRefType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveInstruments(p, db)
			},
		},
	}
}
