// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/instrumentdb/pidinst-backend/config"
	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/internal/services"
	"github.com/instrumentdb/pidinst-backend/pidinst"
	"github.com/instrumentdb/pidinst-backend/restapi/modules/instruments"
	"github.com/instrumentdb/pidinst-backend/restapi/modules/registry"
)

// SetupRoutes configures the public landing endpoints, the write API under
// /api/v1 and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, db database.DBConnection, cfg config.Config, schema graphql.Schema) {
	projector := pidinst.Projector{BaseURL: cfg.BaseURL}
	store := &services.InstrumentStoreWrapper{DB: db}
	synchronizer := &pidinst.Synchronizer{
		Store:     store,
		Client:    pidinst.NewHandleClient(cfg.PIDServiceURL),
		Projector: projector,
		Log:       database.Logger(),
	}
	vocabSyncer := services.NewVocabSyncer(db, cfg.VocabRoot, database.Logger())

	// Public landing routes. The detail endpoint negotiates JSON, XML and
	// HTML representations of the metadata document.
	app.Get("/instruments", instruments.ListInstruments(db))
	app.Get("/instrument/:ref", instruments.GetInstrument(store, projector))

	// API Group /api/v1
	api := app.Group("/api/v1")

	api.Post("/graphql", GraphQLHandler(schema))

	api.Post("/instruments", registry.PostInstrument(db))
	api.Post("/instruments/sync_pids", instruments.SyncPIDs(synchronizer))
	api.Post("/instrument/:uuid/create_pid", instruments.CreatePID(synchronizer))

	api.Post("/organizations", registry.PostOrganization(db))
	api.Post("/persons", registry.PostPerson(db))

	api.Post("/vocab/sync", registry.SyncVocab(vocabSyncer))

	log.Println("API routes initialized successfully")
}
