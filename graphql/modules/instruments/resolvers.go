// Package instruments implements the resolvers for instrument data.
package instruments

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/google/uuid"

	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/model"
)

// ResolveInstrument loads one fully resolved instrument by UUID, accepting
// any textual UUID representation. Unknown instruments resolve to null.
func ResolveInstrument(p graphql.ResolveParams, db database.DBConnection) (interface{}, error) {
	raw, _ := p.Args["uuid"].(string)
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	inst, err := database.InstrumentByUUID(p.Context, db, parsed.String())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return inst, nil
}

// ResolveInstruments lists all instruments as lightweight references.
func ResolveInstruments(p graphql.ResolveParams, db database.DBConnection) (interface{}, error) {
	instruments, err := database.ListInstruments(p.Context, db)
	if err != nil {
		return nil, err
	}
	refs := make([]model.InstrumentRef, 0, len(instruments))
	for _, inst := range instruments {
		refs = append(refs, model.InstrumentRef{Key: inst.Key, UUID: inst.UUID, PID: inst.PID, Name: inst.Name})
	}
	return refs, nil
}
