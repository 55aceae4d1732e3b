package api

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/instrumentdb/pidinst-backend/config"
	"github.com/instrumentdb/pidinst-backend/database"
	"github.com/instrumentdb/pidinst-backend/graphql"
	"github.com/instrumentdb/pidinst-backend/pidinst"
	"github.com/instrumentdb/pidinst-backend/restapi"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(db database.DBConnection, cfg config.Config) *fiber.App {
	// Initialize GraphQL schema
	graphql.Init(db, pidinst.Projector{BaseURL: cfg.BaseURL})
	schema, err := graphql.CreateSchema()
	if err != nil {
		log.Fatalf("Failed to create GraphQL schema: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:     "instrumentdb API v1.0",
		BodyLimit:   10 * 1024 * 1024, // 10MB
		ReadTimeout: 60 * time.Second, // seconds
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Requested-With",
		AllowMethods: "GET, POST, HEAD, OPTIONS",
	}))

	app.Use(logger.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Setup REST and GraphQL routes (Pass the schema here)
	restapi.SetupRoutes(app, db, cfg, schema)

	return app
}
