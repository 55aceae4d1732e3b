package database

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/instrumentdb/pidinst-backend/model"
)

// ModelsWithConcept returns every catalog model linked to a vocabulary
// concept, the population the type synchronizer works on.
func ModelsWithConcept(ctx context.Context, db DBConnection) ([]model.InstrumentModel, error) {
	cursor, err := db.Database.Query(ctx, `
		FOR m IN model
			FILTER m.concept_url != null AND m.concept_url != ""
			SORT m.name
			RETURN m
	`, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var models []model.InstrumentModel
	for cursor.HasMore() {
		var m model.InstrumentModel
		if _, err := cursor.ReadDocument(ctx, &m); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// UpsertTypeConcept finds a type by concept URL or name, refreshes both
// fields from the vocabulary, and creates the type if it is new. Returns
// the stored type and whether it was created.
func UpsertTypeConcept(ctx context.Context, db DBConnection, conceptURL, name string) (model.Type, bool, error) {
	cursor, err := db.Database.Query(ctx, `
		FOR t IN type
			FILTER t.concept_url == @url OR t.name == @name
			LIMIT 1
			UPDATE t WITH { concept_url: @url, name: @name } IN type
			RETURN NEW
	`, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"url": conceptURL, "name": name},
	})
	if err != nil {
		return model.Type{}, false, err
	}
	defer cursor.Close()

	if cursor.HasMore() {
		var t model.Type
		if _, err := cursor.ReadDocument(ctx, &t); err != nil {
			return model.Type{}, false, err
		}
		return t, false, nil
	}

	t := model.Type{Name: name, ConceptURL: conceptURL}
	meta, err := db.Collections["type"].CreateDocument(ctx, &t)
	if err != nil {
		return model.Type{}, false, err
	}
	t.Key = meta.Key
	return t, true, nil
}

// ClearModelTypes removes all type edges of a model before the
// synchronizer rewrites them.
func ClearModelTypes(ctx context.Context, db DBConnection, modelKey string) error {
	cursor, err := db.Database.Query(ctx, `
		FOR e IN model2type
			FILTER e._from == CONCAT("model/", @key)
			REMOVE e IN model2type
	`, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": modelKey},
	})
	if err != nil {
		return err
	}
	return cursor.Close()
}

// AddModelType links a type to a model.
func AddModelType(ctx context.Context, db DBConnection, modelKey, typeKey string) error {
	_, err := db.Collections["model2type"].CreateDocument(ctx, edgeDocument{
		From: "model/" + modelKey,
		To:   "type/" + typeKey,
	})
	return err
}
