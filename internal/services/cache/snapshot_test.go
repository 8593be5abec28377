package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/services/cache"
)

type countingSource struct {
	offers []models.TerminalOffer
	err    error
	calls  int
}

func (s *countingSource) LoadOffers(ctx context.Context) ([]models.TerminalOffer, error) {
	s.calls++
	return s.offers, s.err
}

func setupCache(t *testing.T, source cache.Source) (*cache.SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewSnapshotCache(client, source, time.Minute, zap.NewNop()), mr
}

func sampleOffers() []models.TerminalOffer {
	return []models.TerminalOffer{{
		ID:    1,
		Name:  "Mini",
		Price: decimal.RequireFromString("94.80"),
		Plans: []models.PricingPlan{{
			ID: 10, Name: "Na hora", Active: true, Model: models.BillingModelStandard,
			CreditRate: decimal.RequireFromString("0.0499"),
		}},
	}}
}

func TestSnapshotCache_ReadThrough(t *testing.T) {
	source := &countingSource{offers: sampleOffers()}
	c, mr := setupCache(t, source)
	ctx := context.Background()

	first, err := c.LoadOffers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.True(t, mr.Exists(cache.SnapshotKey))
	assert.Equal(t, time.Minute, mr.TTL(cache.SnapshotKey))

	second, err := c.LoadOffers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls, "second load is served from Redis")
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.True(t, first[0].Plans[0].CreditRate.Equal(second[0].Plans[0].CreditRate))
}

func TestSnapshotCache_ExpiryAndInvalidate(t *testing.T) {
	source := &countingSource{offers: sampleOffers()}
	c, mr := setupCache(t, source)
	ctx := context.Background()

	_, err := c.LoadOffers(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = c.LoadOffers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.LoadOffers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}

func TestSnapshotCache_RedisDownFallsBackToSource(t *testing.T) {
	source := &countingSource{offers: sampleOffers()}
	c, mr := setupCache(t, source)
	mr.Close()

	offers, err := c.LoadOffers(context.Background())
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Error(t, c.Ping(context.Background()))
}

func TestSnapshotCache_CorruptEntryIsReplaced(t *testing.T) {
	source := &countingSource{offers: sampleOffers()}
	c, mr := setupCache(t, source)
	require.NoError(t, mr.Set(cache.SnapshotKey, "not json"))

	offers, err := c.LoadOffers(context.Background())
	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, 1, source.calls)
}

func TestSnapshotCache_SourceError(t *testing.T) {
	source := &countingSource{err: errors.New("db down")}
	c, _ := setupCache(t, source)

	_, err := c.LoadOffers(context.Background())
	assert.EqualError(t, err, "db down")
}
