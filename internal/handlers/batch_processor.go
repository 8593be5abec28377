package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/services/batch"
	"card-fee-simulator/internal/utils"
)

const (
	uploadsPrefix   = "uploads/"
	processedPrefix = "processed/"
)

// ScenarioFiles reads uploaded scenario files and archives them once processed.
type ScenarioFiles interface {
	DownloadFrom(ctx context.Context, bucket, key string) ([]byte, error)
	MoveFile(ctx context.Context, sourceKey, destKey string) error
}

// BatchProcessorHandler handles S3 events for uploaded scenario CSVs.
type BatchProcessorHandler struct {
	files  ScenarioFiles
	runner *batch.Runner
}

// NewBatchProcessorHandler creates a new batch processor handler.
func NewBatchProcessorHandler(files ScenarioFiles, runner *batch.Runner) *BatchProcessorHandler {
	return &BatchProcessorHandler{files: files, runner: runner}
}

// BatchReport is the outcome of one uploaded file.
type BatchReport struct {
	Key       string   `json:"key"`
	BatchID   string   `json:"batch_id,omitempty"`
	Scenarios int      `json:"scenarios"`
	Simulated int      `json:"simulated"`
	NoMatches int      `json:"no_matches"`
	Notified  int      `json:"notified"`
	Errors    []string `json:"errors,omitempty"`
}

// BatchProcessResult is the result of processing an S3 event.
type BatchProcessResult struct {
	Message string        `json:"message"`
	Batches []BatchReport `json:"batches,omitempty"`
}

// Handle processes every CSV record of the event. Files outside uploads/ are ignored so
// archived copies and stored results do not retrigger processing.
func (h *BatchProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (BatchProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return BatchProcessResult{Message: "No records to process"}, nil
	}

	result := BatchProcessResult{Message: "Scenarios processed"}
	for _, record := range s3Event.Records {
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return result, fmt.Errorf("failed to decode S3 key: %w", err)
		}

		if !strings.HasPrefix(key, uploadsPrefix) || !strings.HasSuffix(strings.ToLower(key), ".csv") {
			logger.Debug("Skipping object", zap.String("key", key))
			continue
		}

		report, err := h.process(ctx, bucket, key)
		if err != nil {
			return result, err
		}
		result.Batches = append(result.Batches, report)
	}

	if len(result.Batches) == 0 {
		result.Message = "No scenario files in event"
	}
	return result, nil
}

func (h *BatchProcessorHandler) process(ctx context.Context, bucket, key string) (BatchReport, error) {
	logger := utils.GetLogger()
	logger.Info("Processing scenarios CSV",
		zap.String("bucket", bucket),
		zap.String("key", key))

	content, err := h.files.DownloadFrom(ctx, bucket, key)
	if err != nil {
		logger.Error("Failed to download CSV", zap.Error(err))
		return BatchReport{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	report := BatchReport{Key: key}
	summary, err := h.runner.Run(ctx, batch.NewBatchID(), string(content))
	switch {
	case errors.Is(err, batch.ErrNoValidScenarios):
		report.BatchID = summary.BatchID
		report.Errors = summary.ParseErrors
	case err != nil:
		logger.Error("Batch simulation failed", zap.String("key", key), zap.Error(err))
		return BatchReport{}, fmt.Errorf("failed to simulate %s: %w", key, err)
	default:
		fillReport(&report, summary)
	}

	// Archive processed file
	archiveKey := processedPrefix + strings.TrimPrefix(key, uploadsPrefix)
	if err := h.files.MoveFile(ctx, key, archiveKey); err != nil {
		logger.Warn("Failed to archive file", zap.String("key", key), zap.Error(err))
	}

	return report, nil
}

func fillReport(report *BatchReport, summary *models.BatchSummary) {
	report.BatchID = summary.BatchID
	report.Scenarios = summary.ValidScenarios
	report.Simulated = summary.Simulated
	report.NoMatches = summary.NoMatches
	report.Notified = summary.Notified
	report.Errors = summary.ParseErrors
}
