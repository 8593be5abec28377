package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
	"card-fee-simulator/internal/services/simulator"
)

// corsHeaders are attached to every API Gateway response.
func corsHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": methods,
		"Content-Type":                 "application/json",
	}
}

// jsonResponse marshals body into an API Gateway response.
func jsonResponse(headers map[string]string, statusCode int, body interface{}) (events.APIGatewayProxyResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to encode response")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(data),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// StatusFor maps a simulation error to an HTTP status and a client-facing message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, money.ErrDivisionByZero):
		return http.StatusBadRequest, "invalid arithmetic input: " + err.Error()
	case errors.Is(err, simulator.ErrNoViableOffers):
		return http.StatusNotFound, simulator.ErrNoViableOffers.Error()
	default:
		return http.StatusInternalServerError, "simulation failed"
	}
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
