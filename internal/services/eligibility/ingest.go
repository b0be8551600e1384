package eligibility

import (
	"context"

	"go.uber.org/zap"

	"kisanmitra-scheme-engine/internal/metrics"
	"kisanmitra-scheme-engine/internal/models"
	"kisanmitra-scheme-engine/internal/utils"
)

// IngestCSV parses a farmer CSV and processes the valid rows as one batch.
// Rejected rows are reported in the summary. A file without a single valid
// row yields an empty summary, not an error.
func (s *Service) IngestCSV(ctx context.Context, content string, batchID string) (*models.BatchSummary, error) {
	farmers, parseErrors := utils.NewCSVParser().ParseFarmers(content, batchID)

	rejected := make([]string, 0, len(parseErrors))
	for _, err := range parseErrors {
		rejected = append(rejected, err.Error())
	}

	// File-level errors come back without any rows
	rejectedRows := len(parseErrors)
	if len(farmers) == 0 && rejectedRows > 0 {
		rejectedRows--
	}
	s.metrics.AddIngestRows(metrics.IngestRejected, rejectedRows)

	s.logger.Info("Parsed farmer CSV",
		zap.String("batch_id", batchID),
		zap.Int("valid_rows", len(farmers)),
		zap.Int("parse_errors", len(parseErrors)))

	if len(farmers) == 0 {
		return &models.BatchSummary{
			BatchID:      batchID,
			RejectedRows: rejectedRows,
			Errors:       rejected,
		}, nil
	}

	summary, err := s.ProcessBatch(ctx, farmers, batchID)
	if err != nil {
		return nil, err
	}

	summary.RejectedRows = rejectedRows
	summary.Errors = append(rejected, summary.Errors...)
	return summary, nil
}
