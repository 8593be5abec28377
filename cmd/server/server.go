package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"card-fee-simulator/internal/handlers"
	"card-fee-simulator/internal/services/batch"
	"card-fee-simulator/internal/services/simulator"
	"card-fee-simulator/internal/utils"
)

const maxUploadBytes = 10 << 20

// Invalidator drops the cached catalog snapshot.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Server holds all dependencies
type Server struct {
	service   *simulator.Service
	simulate  *handlers.SimulateHandler
	runner    *batch.Runner
	health    *handlers.HealthHandler
	presigner *handlers.PresignedURLHandler
	cache     Invalidator
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PresignedURLRequest represents the request for presigned URL
type PresignedURLRequest struct {
	Filename string `json:"filename"`
}

// NewServer wires the HTTP routes to the simulator service.
func NewServer(service *simulator.Service, runner *batch.Runner, health *handlers.HealthHandler, presigner *handlers.PresignedURLHandler) *Server {
	return &Server{
		service:   service,
		simulate:  handlers.NewSimulateHandler(service),
		runner:    runner,
		health:    health,
		presigner: presigner,
	}
}

// Routes registers every endpoint on a new mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/health", s.healthHandler)

	// Simulation
	mux.HandleFunc("/api/simulate", s.simulateHandler)
	mux.HandleFunc("/api/terminals", s.terminalsHandler)

	// Batch scenarios
	mux.HandleFunc("/api/batch", s.batchHandler)
	mux.HandleFunc("/api/presigned-url", s.presignedURLHandler)

	// Snapshot cache
	mux.HandleFunc("/api/cache/invalidate", s.invalidateHandler)

	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	report, status := s.health.Check(r.Context())
	writeJSON(w, status, Response{
		Success: status == http.StatusOK,
		Message: "Card fee simulator API is running",
		Data:    report,
	})
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Failed to read body"})
		return
	}

	result, err := s.simulate.Simulate(r.Context(), body, r.URL.Query().Get("ordem"))
	if err != nil {
		status, message := handlers.StatusFor(err)
		if status == http.StatusInternalServerError {
			utils.GetLogger().Error("Simulation failed", zap.Error(err))
		}
		writeJSON(w, status, Response{Success: false, Error: message})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

func (s *Server) terminalsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	offers, err := s.service.Snapshot(r.Context())
	if err != nil {
		utils.GetLogger().Error("Error fetching terminals", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch terminals",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    offers,
	})
}

// batchHandler accepts a scenarios CSV as a multipart "file" field or as the raw body.
func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := readCSV(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	summary, err := s.runner.Run(r.Context(), batch.NewBatchID(), string(content))
	if errors.Is(err, batch.ErrNoValidScenarios) {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
			Data:    summary,
		})
		return
	}
	if err != nil {
		utils.GetLogger().Error("Batch simulation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Batch simulation failed"})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Scenarios processed successfully",
		Data:    summary,
	})
}

func readCSV(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			return nil, errors.New("failed to read body")
		}
		return content, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("failed to parse form: " + err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("no file provided")
	}
	defer file.Close()

	// Validate file type
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		return nil, handlers.ErrOnlyCSV
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	return content, nil
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PresignedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	result, status, err := s.presigner.Presign(r.Context(), req.Filename)
	if err != nil {
		if status == http.StatusInternalServerError {
			utils.GetLogger().Error("Failed to generate presigned URL", zap.Error(err))
			writeJSON(w, status, Response{Success: false, Error: "Failed to generate upload URL"})
			return
		}
		writeJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

func (s *Server) invalidateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.cache == nil {
		writeJSON(w, http.StatusOK, Response{Success: true, Message: "Snapshot cache not configured"})
		return
	}

	if err := s.cache.Invalidate(r.Context()); err != nil {
		utils.GetLogger().Error("Failed to invalidate snapshot cache", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to invalidate cache"})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Snapshot cache invalidated"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
