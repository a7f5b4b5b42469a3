package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"github.com/couchcryptid/station-geocode-migrator/internal/observability"
)

// RecordSink persists a batch of target records in one call.
type RecordSink interface {
	InsertMany(ctx context.Context, records []domain.TargetRecord) error
}

// BatchWriter implements BatchLoader on top of the target store. Store errors
// are returned as *domain.WriteError and never retried. Mirrors receive each
// batch after the store accepted it; their failures are logged only.
type BatchWriter struct {
	target  RecordSink
	mirrors []RecordSink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBatchWriter creates a BatchWriter for target with optional mirrors.
func NewBatchWriter(target RecordSink, logger *slog.Logger, metrics *observability.Metrics, mirrors ...RecordSink) *BatchWriter {
	return &BatchWriter{
		target:  target,
		mirrors: mirrors,
		logger:  logger,
		metrics: metrics,
	}
}

// LoadBatch writes records to the target store. Callers must not pass an
// empty batch.
func (w *BatchWriter) LoadBatch(ctx context.Context, records []domain.TargetRecord) error {
	w.logger.Info("uploading data to target collection", "records", len(records))
	if err := w.target.InsertMany(ctx, records); err != nil {
		w.metrics.WriteFailures.Inc()
		return &domain.WriteError{Records: len(records), Err: err}
	}
	w.metrics.RecordsWritten.Add(float64(len(records)))
	w.metrics.BatchSize.Observe(float64(len(records)))
	w.logger.Info("data uploaded to target collection", "records", len(records))

	for _, m := range w.mirrors {
		if err := m.InsertMany(ctx, records); err != nil {
			w.metrics.MirrorFailures.Inc()
			w.logger.Warn("mirror publish failed", "records", len(records), "error", err)
		}
	}
	return nil
}
