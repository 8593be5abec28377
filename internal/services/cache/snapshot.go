// Package cache keeps the terminal catalog snapshot in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"card-fee-simulator/internal/models"
)

// SnapshotKey is the Redis key holding the encoded catalog.
const SnapshotKey = "terminals:snapshot:v1"

// DefaultTTL applies when a non-positive TTL is configured.
const DefaultTTL = 5 * time.Minute

// Source loads the catalog from its system of record.
type Source interface {
	LoadOffers(ctx context.Context) ([]models.TerminalOffer, error)
}

// SnapshotCache is a read-through cache in front of a Source. Redis failures never fail a
// load; the cache is bypassed and the source is used directly.
type SnapshotCache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient creates a Redis client for the given address.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// NewSnapshotCache wraps source with a Redis cache.
func NewSnapshotCache(client *redis.Client, source Source, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotCache{client: client, source: source, ttl: ttl, logger: logger}
}

// LoadOffers returns the cached snapshot, loading and storing it on a miss.
func (c *SnapshotCache) LoadOffers(ctx context.Context) ([]models.TerminalOffer, error) {
	offers, err := c.get(ctx)
	switch {
	case err == nil:
		return offers, nil
	case errors.Is(err, redis.Nil):
		c.logger.Debug("Snapshot cache miss")
	default:
		c.logger.Warn("Snapshot cache read failed", zap.Error(err))
	}

	offers, err = c.source.LoadOffers(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, offers); err != nil {
		c.logger.Warn("Snapshot cache write failed", zap.Error(err))
	}
	return offers, nil
}

// Invalidate drops the cached snapshot so the next load hits the source.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, SnapshotKey).Err()
}

// Ping checks Redis connectivity.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SnapshotCache) get(ctx context.Context) ([]models.TerminalOffer, error) {
	data, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		return nil, err
	}

	var offers []models.TerminalOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return offers, nil
}

func (c *SnapshotCache) set(ctx context.Context, offers []models.TerminalOffer) error {
	data, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return c.client.Set(ctx, SnapshotKey, data, c.ttl).Err()
}
