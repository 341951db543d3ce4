package main

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-agg-engine/docs"
	"go-agg-engine/internal/api"
	"go-agg-engine/internal/config"
	"go-agg-engine/internal/runner"
	"go-agg-engine/internal/store"
	"go-agg-engine/pkg/router"
)

// @title Aggregation Engine API
// @version 1.0
// @description Sharded parallel group-by aggregation service
// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Init DB
	if err := store.InitDB(cfg.DBPath); err != nil {
		panic(err)
	}

	runner.SetOutputDir(cfg.OutputDir)

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Swagger UI
	r.Handle("/swagger/", httpSwagger.WrapHandler)

	// Start server
	r.Start(cfg.Addr)
}
