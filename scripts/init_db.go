// Command init_db applies the catalog schema and optionally publishes a catalog file.
//
//	go run ./scripts                       # schema only
//	go run ./scripts scripts/catalog.example.json  # schema, import, S3 snapshot, cache reset
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"card-fee-simulator/internal/config"
	"card-fee-simulator/internal/services/cache"
	"card-fee-simulator/internal/services/database"
	s3service "card-fee-simulator/internal/services/s3"
	"card-fee-simulator/internal/utils"
)

func main() {
	fmt.Println("=== Catalog Initialization Script ===")
	fmt.Println()

	// Load environment variables
	cfg, err := config.Load()
	if err != nil {
		fail("Failed to load config", err)
	}
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("📡 Connecting to PostgreSQL...")
	db, err := database.New(cfg)
	if err != nil {
		fail("Failed to connect to database", err)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database successfully!")

	fmt.Println("🚀 Applying catalog schema...")
	if err := db.Migrate(ctx); err != nil {
		fail("Failed to apply schema", err)
	}
	fmt.Println("✅ Schema applied!")
	fmt.Println()

	if len(os.Args) < 2 {
		fmt.Println("🎉 Database initialization completed successfully!")
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  1. Import a catalog: go run ./scripts scripts/catalog.example.json")
		fmt.Println("  2. Start the API: go run ./cmd/server")
		return
	}

	path := os.Args[1]
	fmt.Printf("📖 Reading catalog %s...\n", path)
	data, err := os.ReadFile(path)
	if err != nil {
		fail("Failed to read catalog", err)
	}

	offers, err := s3service.DecodeSnapshot(data)
	if err != nil {
		fail("Invalid catalog", err)
	}

	repo := database.NewTerminalRepository(db)
	if err := repo.Import(ctx, offers); err != nil {
		fail("Failed to import catalog", err)
	}

	loaded, err := repo.LoadOffers(ctx)
	if err != nil {
		fail("Failed to reload catalog", err)
	}

	fmt.Println()
	fmt.Println("   📋 Terminals:")
	fmt.Println("   ─────────────────────────────────────────────────────────")
	for _, t := range loaded {
		fmt.Printf("   %d. %s (%s), %d active plan(s)\n", t.ID, t.Name, t.VendorName, len(t.Plans))
	}
	fmt.Println("   ─────────────────────────────────────────────────────────")
	fmt.Println()

	if cfg.SnapshotKey != "" {
		fmt.Printf("☁️  Publishing snapshot to s3://%s/%s...\n", cfg.S3Bucket, cfg.SnapshotKey)
		s3Svc, err := s3service.NewService(ctx, cfg)
		if err != nil {
			fail("Failed to create S3 client", err)
		}
		if err := s3Svc.UploadJSON(ctx, cfg.SnapshotKey, loaded); err != nil {
			fail("Failed to publish snapshot", err)
		}
		fmt.Println("✅ Snapshot published!")
	}

	if cfg.RedisAddr != "" {
		client := cache.NewClient(cfg.RedisAddr)
		defer client.Close()
		snapshot := cache.NewSnapshotCache(client, repo, cfg.SnapshotCacheTTL, utils.GetLogger())
		if err := snapshot.Invalidate(ctx); err != nil {
			fmt.Printf("⚠️  Warning: Could not reset snapshot cache: %v\n", err)
		} else {
			fmt.Println("✅ Snapshot cache reset!")
		}
	}

	fmt.Println()
	fmt.Println("🎉 Catalog initialization completed successfully!")
}

func fail(msg string, err error) {
	fmt.Printf("❌ %s: %v\n", msg, err)
	os.Exit(1)
}
