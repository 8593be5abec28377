// Package batch simulates every merchant scenario of an uploaded CSV against one catalog snapshot.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"card-fee-simulator/internal/models"
	s3service "card-fee-simulator/internal/services/s3"
	"card-fee-simulator/internal/services/simulator"
	"card-fee-simulator/internal/utils"
)

// Batch errors
var (
	ErrNoValidScenarios = errors.New("no valid scenarios in CSV")
)

const (
	defaultTopN          = 3
	maxReportedErrors    = 10
	resultsLinkExpiryMin = 24 * 60
)

// ObjectStore stores batch results.
type ObjectStore interface {
	UploadJSON(ctx context.Context, key string, v interface{}) error
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// Notifier delivers a scenario's outcome to its contact.
type Notifier interface {
	NotifyScenario(ctx context.Context, scenario *models.BatchScenario, outcome models.ScenarioOutcome, resultsURL string) error
}

// Runner runs batch simulations.
type Runner struct {
	service       *simulator.Service
	store         ObjectStore
	notifier      Notifier
	resultsPrefix string
	topN          int
	logger        *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore uploads each batch summary under prefix.
func WithStore(store ObjectStore, prefix string) Option {
	return func(r *Runner) {
		r.store = store
		r.resultsPrefix = prefix
	}
}

// WithNotifier emails scenarios that carry a contact address.
func WithNotifier(n Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithTopN sets how many offers per order are kept in each outcome.
func WithTopN(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a batch runner over a simulator service.
func NewRunner(service *simulator.Service, opts ...Option) *Runner {
	r := &Runner{
		service: service,
		topN:    defaultTopN,
		logger:  utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewBatchID generates a unique batch ID.
func NewBatchID() string {
	return uuid.NewString()
}

// ResultsKey is the object key a batch summary is stored under.
func (r *Runner) ResultsKey(batchID string) string {
	return path.Join(r.resultsPrefix, batchID+".json")
}

// Run parses csvContent and simulates every valid scenario. A summary is returned even when
// no scenario is valid, together with ErrNoValidScenarios.
func (r *Runner) Run(ctx context.Context, batchID, csvContent string) (*models.BatchSummary, error) {
	start := time.Now()
	if batchID == "" {
		batchID = NewBatchID()
	}

	parser := utils.NewCSVParser()
	scenarios, parseErrors := parser.ParseScenarios(csvContent)

	summary := &models.BatchSummary{
		BatchID:        batchID,
		TotalRows:      len(scenarios) + countRowErrors(parseErrors),
		ValidScenarios: len(scenarios),
		ParseErrors:    errorStrings(parseErrors, maxReportedErrors),
		Outcomes:       make([]models.ScenarioOutcome, 0, len(scenarios)),
	}

	r.logger.Info("Parsed scenarios CSV",
		zap.String("batch_id", batchID),
		zap.Int("valid_scenarios", len(scenarios)),
		zap.Int("parse_errors", len(parseErrors)),
	)

	if len(scenarios) == 0 {
		summary.ProcessedAt = time.Now().UTC()
		summary.ProcessingMs = time.Since(start).Milliseconds()
		return summary, ErrNoValidScenarios
	}

	offers, err := r.service.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for _, scenario := range scenarios {
		outcome, err := r.simulate(scenario, offers)
		switch {
		case err == nil:
			summary.Simulated++
		case errors.Is(err, simulator.ErrNoViableOffers):
			summary.NoMatches++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	summary.ProcessedAt = time.Now().UTC()
	summary.ProcessingMs = time.Since(start).Milliseconds()

	resultsURL := r.upload(ctx, summary)
	summary.Notified = r.notify(ctx, scenarios, summary.Outcomes, resultsURL)

	r.logger.Info("Batch simulation complete",
		zap.String("batch_id", batchID),
		zap.Int("simulated", summary.Simulated),
		zap.Int("no_matches", summary.NoMatches),
		zap.Int("notified", summary.Notified),
		zap.Int64("processing_ms", summary.ProcessingMs),
	)

	return summary, nil
}

func (r *Runner) simulate(scenario *models.BatchScenario, offers []models.TerminalOffer) (models.ScenarioOutcome, error) {
	outcome := models.ScenarioOutcome{
		ScenarioID: scenario.ScenarioID,
		Email:      scenario.Email,
	}

	ranking, err := r.service.SimulateAgainst(scenario.Request, offers)
	if err != nil {
		if errors.Is(err, simulator.ErrNoViableOffers) {
			outcome.Error = "no matching offers"
		} else {
			outcome.Error = err.Error()
		}
		r.logger.Debug("Scenario produced no ranking",
			zap.String("scenario_id", scenario.ScenarioID),
			zap.Error(err),
		)
		return outcome, err
	}

	outcome.ResultCount = len(ranking.Results)
	outcome.TopByCost = ranking.Top(simulator.OrderCost, r.topN)
	outcome.TopByRating = ranking.Top(simulator.OrderRating, r.topN)
	return outcome, nil
}

// upload uploads the summary and returns a download link, or "" when unavailable.
func (r *Runner) upload(ctx context.Context, summary *models.BatchSummary) string {
	if r.store == nil {
		return ""
	}

	key := r.ResultsKey(summary.BatchID)
	if err := r.store.UploadJSON(ctx, key, summary); err != nil {
		r.logger.Warn("Failed to store batch results", zap.String("key", key), zap.Error(err))
		return ""
	}

	link, err := r.store.GeneratePresignedDownloadURL(ctx, key, resultsLinkExpiryMin)
	if err != nil {
		r.logger.Warn("Failed to presign batch results", zap.String("key", key), zap.Error(err))
		return ""
	}
	return link.URL
}

func (r *Runner) notify(ctx context.Context, scenarios []*models.BatchScenario, outcomes []models.ScenarioOutcome, resultsURL string) int {
	if r.notifier == nil {
		return 0
	}

	notified := 0
	for i, scenario := range scenarios {
		if scenario.Email == "" || outcomes[i].ResultCount == 0 {
			continue
		}
		if err := r.notifier.NotifyScenario(ctx, scenario, outcomes[i], resultsURL); err != nil {
			r.logger.Warn("Failed to notify scenario contact",
				zap.String("scenario_id", scenario.ScenarioID),
				zap.Error(err),
			)
			continue
		}
		notified++
	}
	return notified
}

// countRowErrors counts errors tied to a data row, ignoring file-level errors.
func countRowErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if errors.Is(err, utils.ErrEmptyCSV) || errors.Is(err, utils.ErrNoDataRows) || errors.Is(err, utils.ErrMissingColumns) {
			continue
		}
		n++
	}
	return n
}

func errorStrings(errs []error, limit int) []string {
	out := make([]string, 0, min(len(errs), limit))
	for _, err := range errs {
		if len(out) == limit {
			out = append(out, fmt.Sprintf("... and %d more", len(errs)-limit))
			break
		}
		out = append(out, err.Error())
	}
	return out
}
