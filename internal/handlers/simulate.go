package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/services/simulator"
	"card-fee-simulator/internal/utils"
)

// ErrMalformedBody is returned when a request body is not valid JSON.
var ErrMalformedBody = errors.New("malformed request body")

// SimulateResponse is the ranked answer to one simulation request.
type SimulateResponse struct {
	Order   simulator.Order           `json:"ordem"`
	Best    models.SimulationResult   `json:"melhor"`
	Results []models.SimulationResult `json:"resultados"`
	Input   models.SimulationRequest  `json:"entrada"`
	Stats   simulator.Stats           `json:"estatisticas"`
}

// SimulateHandler handles simulation requests from API Gateway.
type SimulateHandler struct {
	service *simulator.Service
}

// NewSimulateHandler creates a simulate handler.
func NewSimulateHandler(service *simulator.Service) *SimulateHandler {
	return &SimulateHandler{service: service}
}

// Simulate decodes body, runs the simulation and orders the results. order is the raw
// "ordem" query value.
func (h *SimulateHandler) Simulate(ctx context.Context, body []byte, order string) (*SimulateResponse, error) {
	var req models.SimulationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	ranking, err := h.service.Simulate(ctx, req)
	if err != nil {
		return nil, err
	}

	o := simulator.ParseOrder(order)
	return &SimulateResponse{
		Order:   o,
		Best:    ranking.Best(o),
		Results: ranking.Ordered(o),
		Input:   ranking.Input,
		Stats:   ranking.Stats,
	}, nil
}

// Handle processes POST /simulate requests.
func (h *SimulateHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("POST,OPTIONS")

	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	response, err := h.Simulate(ctx, []byte(request.Body), request.QueryStringParameters["ordem"])
	if err != nil {
		status, message := StatusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("Simulation failed", zap.Error(err))
		}
		return errorResponse(headers, status, message)
	}

	logger.Info("Simulation complete",
		zap.String("order", string(response.Order)),
		zap.Int("results", len(response.Results)),
	)

	return jsonResponse(headers, http.StatusOK, response)
}
