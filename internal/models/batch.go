package models

import (
	"strings"
	"time"
)

// BatchScenario is one merchant profile from an uploaded scenarios CSV.
type BatchScenario struct {
	ScenarioID string            `json:"scenario_id" validate:"required,max=64"`
	Email      string            `json:"email,omitempty" validate:"omitempty,email"`
	Request    SimulationRequest `json:"request"`
}

// ValidateBatchScenario validates a parsed scenario including its request.
func ValidateBatchScenario(s *BatchScenario) error {
	if strings.TrimSpace(s.ScenarioID) == "" {
		return ErrEmptyScenarioID
	}
	if err := validate.Struct(s); err != nil {
		return describeErr(err)
	}
	return ValidateSimulationRequest(&s.Request)
}

func describeErr(err error) error {
	return &ValidationError{Message: describe(err)}
}

// ValidationError carries a flattened validator message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ScenarioOutcome is the simulation summary stored for one batch scenario.
type ScenarioOutcome struct {
	ScenarioID  string             `json:"scenario_id"`
	Email       string             `json:"email,omitempty"`
	ResultCount int                `json:"result_count"`
	TopByCost   []SimulationResult `json:"top_by_cost,omitempty"`
	TopByRating []SimulationResult `json:"top_by_rating,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	BatchID        string            `json:"batch_id"`
	TotalRows      int               `json:"total_rows"`
	ValidScenarios int               `json:"valid_scenarios"`
	ParseErrors    []string          `json:"parse_errors,omitempty"`
	Simulated      int               `json:"simulated"`
	NoMatches      int               `json:"no_matches"`
	Notified       int               `json:"notified"`
	Outcomes       []ScenarioOutcome `json:"outcomes"`
	ProcessedAt    time.Time         `json:"processed_at"`
	ProcessingMs   int64             `json:"processing_ms"`
}
