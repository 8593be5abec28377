package simulator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"card-fee-simulator/internal/config"
	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/utils"
)

// SnapshotSource loads the terminal/plan snapshot used for one simulation.
type SnapshotSource interface {
	LoadOffers(ctx context.Context) ([]models.TerminalOffer, error)
}

// StaticSource serves a fixed, in-memory snapshot.
type StaticSource []models.TerminalOffer

// LoadOffers returns the static snapshot.
func (s StaticSource) LoadOffers(ctx context.Context) ([]models.TerminalOffer, error) {
	return s, ctx.Err()
}

// Service validates requests, loads the snapshot and runs the engine.
type Service struct {
	source SnapshotSource
	engine *Engine
}

// NewService creates a simulator service.
func NewService(source SnapshotSource, engine *Engine) *Service {
	if engine == nil {
		engine = NewEngine()
	}
	return &Service{source: source, engine: engine}
}

// NewEngineFromConfig builds an engine using the configured decimal context and threshold.
func NewEngineFromConfig(cfg *config.Config) (*Engine, error) {
	dc, err := cfg.DecimalContext()
	if err != nil {
		return nil, err
	}
	return NewEngine(
		WithDecimalContext(dc),
		WithMinCost(cfg.MinSignificantCost),
		WithLogger(utils.GetLogger()),
	), nil
}

// Snapshot loads the current offers.
func (s *Service) Snapshot(ctx context.Context) ([]models.TerminalOffer, error) {
	offers, err := s.source.LoadOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	return offers, nil
}

// Simulate validates the request and ranks the current offers for it.
func (s *Service) Simulate(ctx context.Context, req models.SimulationRequest) (*Ranking, error) {
	if err := models.ValidateSimulationRequest(&req); err != nil {
		return nil, err
	}

	offers, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return s.rank(req, offers)
}

// SimulateAgainst ranks an already loaded snapshot. Batch runs use it to share one snapshot.
func (s *Service) SimulateAgainst(req models.SimulationRequest, offers []models.TerminalOffer) (*Ranking, error) {
	if err := models.ValidateSimulationRequest(&req); err != nil {
		return nil, err
	}
	return s.rank(req, offers)
}

// rank runs the engine on a validated request.
func (s *Service) rank(req models.SimulationRequest, offers []models.TerminalOffer) (*Ranking, error) {
	ranking, err := s.engine.Simulate(req.Normalize(), offers)
	if err != nil {
		s.engine.logger.Debug("Simulation produced no ranking", zap.Error(err))
		return nil, err
	}
	return ranking, nil
}
