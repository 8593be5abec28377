// Package main provides a local HTTP server for development and testing.
// It exposes the simulation, catalog and batch endpoints behind one mux.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"card-fee-simulator/internal/config"
	"card-fee-simulator/internal/handlers"
	"card-fee-simulator/internal/utils"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx := context.Background()
	deps, err := handlers.NewDeps(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	server := NewServer(deps.Service, deps.NewRunner(ctx),
		handlers.NewHealthHandler(deps.HealthChecks()),
		handlers.NewPresignedURLHandler(deps.S3),
	)
	if deps.Cache != nil {
		server.cache = deps.Cache
	}

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(server.Routes())
	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)

	logger.Info("Card fee simulator API server",
		zap.String("addr", addr),
		zap.String("stage", cfg.Stage),
		zap.Bool("snapshot_from_s3", cfg.SnapshotKey != ""),
		zap.Bool("snapshot_cache", deps.Cache != nil),
	)

	// Start server (this blocks until error)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
