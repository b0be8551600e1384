package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"kisanmitra-scheme-engine/internal/models"
	s3service "kisanmitra-scheme-engine/internal/services/s3"
	"kisanmitra-scheme-engine/internal/utils"
)

// maxReportedErrors caps the row errors returned to the caller.
const maxReportedErrors = 10

// ObjectStore reads uploaded batches and archives them once processed.
type ObjectStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	ArchiveFile(ctx context.Context, key string) (string, error)
}

// BatchIngester turns CSV content into a processed farmer batch.
type BatchIngester interface {
	IngestCSV(ctx context.Context, content string, batchID string) (*models.BatchSummary, error)
}

// CSVProcessorHandler handles S3 events for farmer CSV uploads.
type CSVProcessorHandler struct {
	store    ObjectStore
	ingester BatchIngester
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler(store ObjectStore, ingester BatchIngester) *CSVProcessorHandler {
	return &CSVProcessorHandler{store: store, ingester: ingester}
}

// CSVProcessResult is the result of processing a CSV file.
type CSVProcessResult struct {
	Message     string               `json:"message"`
	Key         string               `json:"key,omitempty"`
	ArchivedKey string               `json:"archived_key,omitempty"`
	Summary     *models.BatchSummary `json:"summary,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded CSV files. Every record in the
// event is processed; one failing file does not stop the others.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) ([]CSVProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return []CSVProcessResult{{Message: "No records to process"}}, nil
	}

	results := make([]CSVProcessResult, 0, len(s3Event.Records))
	failed := 0

	for _, record := range s3Event.Records {
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return results, fmt.Errorf("failed to decode S3 key: %w", err)
		}

		logger.Info("Processing CSV file",
			utils.String("bucket", record.S3.Bucket.Name),
			utils.String("key", key))

		result, err := h.ProcessKey(ctx, key)
		if err != nil {
			failed++
			logger.Error("Failed to process CSV", utils.String("key", key), utils.Error(err))
			result = CSVProcessResult{Message: "CSV processing failed", Key: key, Errors: []string{err.Error()}}
		}
		results = append(results, result)
	}

	if failed == len(s3Event.Records) {
		return results, fmt.Errorf("all %d uploaded files failed to process", failed)
	}
	return results, nil
}

// ProcessKey downloads one uploaded CSV, ingests it and archives it.
func (h *CSVProcessorHandler) ProcessKey(ctx context.Context, key string) (CSVProcessResult, error) {
	logger := utils.GetLogger()

	if !strings.HasSuffix(strings.ToLower(key), ".csv") {
		return CSVProcessResult{Message: "Skipped non-CSV object", Key: key}, nil
	}

	data, err := h.store.DownloadFile(ctx, key)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	batchID := s3service.BatchIDFromKey(key)

	summary, err := h.ingester.IngestCSV(ctx, string(data), batchID)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to process batch %s: %w", batchID, err)
	}

	result := CSVProcessResult{
		Message: "CSV processed successfully",
		Key:     key,
		Summary: summary,
		Errors:  truncateErrors(summary.Errors),
	}
	if summary.TotalFarmers == 0 {
		result.Message = "No valid farmers found in CSV"
	}

	// Archive even when nothing was valid so the upload is not reprocessed
	archived, err := h.store.ArchiveFile(ctx, key)
	if err != nil {
		logger.Warn("Failed to archive file", utils.String("key", key), utils.Error(err))
	} else {
		result.ArchivedKey = archived
	}

	return result, nil
}

func truncateErrors(errs []string) []string {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}
