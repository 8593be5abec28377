package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"card-fee-simulator/internal/utils"
)

// HealthCheck checks one backend.
type HealthCheck func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler creates a health handler over the given checks.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Stage        string            `json:"stage"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Check runs every check and returns the report with its HTTP status.
func (h *HealthHandler) Check(ctx context.Context) (HealthResponse, int) {
	response := HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Service:      utils.ServiceName,
		Version:      getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:        getEnvOrDefault("STAGE", "unknown"),
		Dependencies: make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := h.checks[name](checkCtx)
		cancel()
		if err != nil {
			response.Dependencies[name] = "disconnected"
			response.Status = "degraded"
			continue
		}
		response.Dependencies[name] = "connected"
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return response, statusCode
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response, statusCode := h.Check(ctx)
	return jsonResponse(corsHeaders("GET,OPTIONS"), statusCode, response)
}
