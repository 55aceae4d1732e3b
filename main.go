// package main provides the entry point for the instrumentdb backend,
// the metadata registry that projects the instrument graph into PIDINST
// documents and keeps the external handle records in sync.
package main

import (
	"log"
	"os"

	"github.com/instrumentdb/pidinst-backend/config"
	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/internal/api"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db := database.InitializeDatabase()

	app := api.NewFiberApp(db, cfg)

	port := os.Getenv("MS_PORT")
	if port == "" {
		port = "8000"
	}
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
