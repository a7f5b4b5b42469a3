package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"github.com/couchcryptid/station-geocode-migrator/internal/observability"
)

// PageReader reads a skip/limit page of source records.
type PageReader interface {
	FetchPage(ctx context.Context, offset, limit int) ([]domain.SourceRecord, error)
}

// Enricher converts a source record into a target record.
type Enricher interface {
	Enrich(ctx context.Context, src domain.SourceRecord) (domain.TargetRecord, error)
}

// BatchLoader writes a non-empty batch of target records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.TargetRecord) error
}

// Result summarises a completed run.
type Result struct {
	Processed int // records enriched and written
	Failed    int // records dropped after geocoding failed
	Pages     int // non-empty pages processed
	Cursor    Cursor
}

// Pipeline drives the paginated fetch, per-record enrichment, and batch write
// loop. Records are processed strictly one after another; the geocoder's
// fixed delay is the only throttle on the external API.
type Pipeline struct {
	reader   PageReader
	enricher Enricher
	loader   BatchLoader
	logger   *slog.Logger
	metrics  *observability.Metrics
	pageSize int
	started  atomic.Bool
	progress atomic.Pointer[Result]
}

// New creates a Pipeline with the given stages and observability.
func New(r PageReader, e Enricher, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, pageSize int) *Pipeline {
	return &Pipeline{
		reader:   r,
		enricher: e,
		loader:   l,
		logger:   logger,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

// CheckReadiness returns nil once the run has started.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.started.Load() {
		return errors.New("migration has not started yet")
	}
	return nil
}

// Progress returns a snapshot of the run as of the last completed page.
func (p *Pipeline) Progress() Result {
	if r := p.progress.Load(); r != nil {
		return *r
	}
	return Result{Cursor: NewCursor(p.pageSize)}
}

// Run pages through the source until an empty page is returned. Geocoding
// failures drop the record and the run continues; any other error, including
// a failed fetch or write, stops the run before the next page is fetched.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.pageSize <= 0 {
		return Result{}, fmt.Errorf("invalid page size %d", p.pageSize)
	}

	p.started.Store(true)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	res := Result{Cursor: NewCursor(p.pageSize)}
	p.logger.Info("migration started", "page_size", p.pageSize)

	for !res.Cursor.Exhausted {
		err := p.processPage(ctx, &res)
		snapshot := res
		p.progress.Store(&snapshot)
		if err != nil {
			return res, err
		}
	}

	p.logger.Info("migration finished",
		"processed", res.Processed,
		"failed", res.Failed,
		"pages", res.Pages,
	)
	return res, nil
}

// processPage runs one FETCHING → ENRICHING_PAGE → WRITING_PAGE cycle.
func (p *Pipeline) processPage(ctx context.Context, res *Result) error {
	start := time.Now()
	cur := &res.Cursor

	page, err := p.reader.FetchPage(ctx, cur.Offset, cur.PageSize)
	if err != nil {
		return fmt.Errorf("fetch page at offset %d: %w", cur.Offset, err)
	}
	p.metrics.PagesFetched.Inc()
	cur.Observe(len(page))
	if cur.Exhausted {
		p.logger.Info("no more data to fetch", "offset", cur.Offset)
		return nil
	}

	p.logger.Info("page fetched", "offset", cur.Offset, "records", len(page))
	p.metrics.RecordsRead.Add(float64(len(page)))

	batch, failed, err := p.enrichPage(ctx, page, res.Processed+res.Failed)
	if err != nil {
		return err
	}
	res.Failed += failed

	if len(batch) > 0 {
		if err := p.loader.LoadBatch(ctx, batch); err != nil {
			p.logger.Error("write batch failed", "offset", cur.Offset, "records", len(batch), "error", err)
			return fmt.Errorf("write page at offset %d: %w", cur.Offset, err)
		}
		res.Processed += len(batch)
	} else {
		p.logger.Warn("no records enriched in page, skipping write", "offset", cur.Offset, "failed", failed)
	}

	res.Pages++
	cur.Advance()
	p.metrics.PageDuration.Observe(time.Since(start).Seconds())
	return nil
}

// enrichPage enriches records in fetch order. It returns the enriched batch
// and the number of records dropped because geocoding failed permanently.
// handled is the number of records taken from earlier pages.
func (p *Pipeline) enrichPage(ctx context.Context, page []domain.SourceRecord, handled int) ([]domain.TargetRecord, int, error) {
	batch := make([]domain.TargetRecord, 0, len(page))
	failed := 0

	for i, src := range page {
		p.logger.Info("processing record", "count", handled+i+1, "city", src.City)
		out, err := p.enricher.Enrich(ctx, src)
		if err != nil {
			if errors.Is(err, domain.ErrGeocodingFailed) {
				p.logger.Error("failed to process record, skipping",
					"index", i,
					"city", src.City,
					"zipcode", src.Zipcode,
					"error", err,
				)
				p.metrics.GeocodeFailures.Inc()
				failed++
				continue
			}
			return nil, failed, fmt.Errorf("enrich record %q: %w", src.Zipcode, err)
		}
		batch = append(batch, out)
		p.metrics.RecordsEnriched.Inc()
	}
	return batch, failed, nil
}
