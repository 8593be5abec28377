package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	s3service "card-fee-simulator/internal/services/s3"
	"card-fee-simulator/internal/utils"
)

const uploadURLExpiryMinutes = 60

// ErrOnlyCSV rejects scenario uploads that are not CSV files.
var ErrOnlyCSV = errors.New("only CSV files are allowed")

// UploadSigner presigns scenario file uploads.
type UploadSigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler handles requests for generating presigned S3 URLs.
type PresignedURLHandler struct {
	signer UploadSigner
	now    func() time.Time
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(signer UploadSigner) *PresignedURLHandler {
	return &PresignedURLHandler{signer: signer, now: time.Now}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// UploadKey builds a unique uploads/ key for a scenario file.
func (h *PresignedURLHandler) UploadKey(filename string) string {
	timestamp := h.now().UTC().Format("2006/01/02")
	return uploadsPrefix + timestamp + "/" + uuid.NewString() + "_" + sanitizeFilename(filename)
}

// Presign validates filename and presigns an upload for it.
func (h *PresignedURLHandler) Presign(ctx context.Context, filename string) (*PresignedURLResponse, int, error) {
	if filename == "" {
		filename = "cenarios_" + uuid.NewString()[:8] + ".csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, http.StatusBadRequest, ErrOnlyCSV
	}

	s3Key := h.UploadKey(filename)
	presigned, err := h.signer.GeneratePresignedUploadURL(ctx, s3Key, "text/csv", uploadURLExpiryMinutes)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return &PresignedURLResponse{
		UploadURL: presigned.URL,
		S3Key:     s3Key,
		ExpiresIn: uploadURLExpiryMinutes * 60,
	}, http.StatusOK, nil
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("GET,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	response, status, err := h.Presign(ctx, request.QueryStringParameters["filename"])
	if err != nil {
		if status == http.StatusInternalServerError {
			logger.Error("Failed to generate presigned URL", zap.Error(err))
			return errorResponse(headers, status, "Failed to generate upload URL")
		}
		return errorResponse(headers, status, err.Error())
	}

	logger.Info("Generated presigned URL", zap.String("s3Key", response.S3Key))
	return jsonResponse(headers, http.StatusOK, response)
}

// sanitizeFilename removes unsafe characters from filename.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[len(safe)-100:]
	}
	return safe
}
