// Package handlers provides the Lambda and HTTP handlers for the card fee simulator.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appConfig "card-fee-simulator/internal/config"
	"card-fee-simulator/internal/services/batch"
	"card-fee-simulator/internal/services/cache"
	"card-fee-simulator/internal/services/database"
	s3service "card-fee-simulator/internal/services/s3"
	sesservice "card-fee-simulator/internal/services/ses"
	"card-fee-simulator/internal/services/simulator"
	"card-fee-simulator/internal/utils"
)

// Deps holds the clients shared by the handlers of one process.
type Deps struct {
	Config  *appConfig.Config
	DB      *database.DB
	Redis   *redis.Client
	S3      *s3service.Service
	Cache   *cache.SnapshotCache
	Service *simulator.Service
}

// NewDeps connects the configured backends and builds the simulator service.
//
// The snapshot is read from S3 when SNAPSHOT_KEY is set and from PostgreSQL otherwise.
// When REDIS_ADDR is set the snapshot is cached in Redis.
func NewDeps(ctx context.Context, cfg *appConfig.Config) (*Deps, error) {
	logger := utils.GetLogger()
	d := &Deps{Config: cfg}

	s3Svc, err := s3service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.S3 = s3Svc

	db, err := database.New(cfg)
	if err != nil {
		if cfg.SnapshotKey == "" {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Warn("Database unavailable, serving snapshot from S3", zap.Error(err))
	}
	d.DB = db

	var source cache.Source
	if cfg.SnapshotKey != "" {
		source = s3service.NewSnapshotSource(s3Svc, cfg.SnapshotKey)
	} else {
		source = database.NewTerminalRepository(db)
	}

	if cfg.RedisAddr != "" {
		d.Redis = cache.NewClient(cfg.RedisAddr)
		d.Cache = cache.NewSnapshotCache(d.Redis, source, cfg.SnapshotCacheTTL, logger)
		source = d.Cache
	}

	engine, err := simulator.NewEngineFromConfig(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("invalid simulation settings: %w", err)
	}
	d.Service = simulator.NewService(source, engine)

	return d, nil
}

// NewRunner builds a batch runner that stores results in S3 and, when a sender is
// configured, emails each scenario's contact through SES.
func (d *Deps) NewRunner(ctx context.Context) *batch.Runner {
	logger := utils.GetLogger()
	opts := []batch.Option{
		batch.WithStore(d.S3, d.Config.ResultsPrefix),
		batch.WithLogger(logger),
	}

	notifier, err := sesservice.NewService(ctx, d.Config)
	switch {
	case errors.Is(err, sesservice.ErrSenderNotConfigured):
		logger.Info("SES sender not configured, batch emails disabled")
	case err != nil:
		logger.Warn("Failed to initialize SES, batch emails disabled", zap.Error(err))
	default:
		opts = append(opts, batch.WithNotifier(notifier))
	}

	return batch.NewRunner(d.Service, opts...)
}

// HealthChecks returns the backend checks reported by the health endpoint.
func (d *Deps) HealthChecks() map[string]HealthCheck {
	checks := make(map[string]HealthCheck)
	if d.DB != nil {
		checks["database"] = d.DB.HealthCheck
	}
	if d.Cache != nil {
		checks["cache"] = d.Cache.Ping
	}
	return checks
}

// Close releases the connections.
func (d *Deps) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}
