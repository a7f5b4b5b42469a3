// Package runner owns one migration run: the store connection lifecycle, the
// pipeline invocation, and the resulting process exit code.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	httpadapter "github.com/couchcryptid/station-geocode-migrator/internal/adapter/http"
	"github.com/couchcryptid/station-geocode-migrator/internal/config"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"github.com/couchcryptid/station-geocode-migrator/internal/observability"
	"github.com/couchcryptid/station-geocode-migrator/internal/pipeline"
)

// Exit codes.
const (
	ExitOK             = 0
	ExitStartupFailure = 1
)

// Store is the single connection shared by the page reader and batch writer.
type Store interface {
	pipeline.PageReader
	pipeline.RecordSink
	EnsureGeoIndex(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connector opens the store connection.
type Connector func(ctx context.Context) (Store, error)

// Controller runs the migration exactly once per process.
type Controller struct {
	cfg      *config.Config
	connect  Connector
	geocoder domain.Geocoder
	mirrors  []pipeline.RecordSink
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Controller. mirrors receive every stored batch.
func New(cfg *config.Config, connect Connector, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics, mirrors ...pipeline.RecordSink) *Controller {
	return &Controller{
		cfg:      cfg,
		connect:  connect,
		geocoder: geocoder,
		mirrors:  mirrors,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run connects to the store, runs the pipeline, and always releases the
// connection before returning. A connection failure returns
// ExitStartupFailure without starting the pipeline; a run-level error returns
// the configured RunErrorExitCode.
func (c *Controller) Run(ctx context.Context) int {
	store, err := c.connect(ctx)
	if err != nil {
		c.logger.Error("failed to connect to store", "error", err)
		return ExitStartupFailure
	}
	defer c.closeStore(store)

	if c.cfg.EnsureGeoIndex {
		if err := store.EnsureGeoIndex(ctx); err != nil {
			c.logger.Error("application error", "error", err)
			return c.cfg.RunErrorExitCode
		}
	}

	writer := pipeline.NewBatchWriter(store, c.logger, c.metrics, c.mirrors...)
	p := pipeline.New(store, pipeline.NewEnricher(c.geocoder), writer, c.logger, c.metrics, c.cfg.BatchSize)

	if c.cfg.MetricsAddr != "" {
		ready := httpadapter.AllReady(p, httpadapter.ReadinessFunc(store.Ping))
		srv := httpadapter.NewServer(c.cfg.MetricsAddr, ready, p, c.logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.logger.Error("http server error", "error", err)
			}
		}()
		defer c.shutdownServer(srv)
	}

	res, err := p.Run(ctx)
	if err != nil {
		c.logger.Error("application error",
			"error", err,
			"processed", res.Processed,
			"failed", res.Failed,
			"offset", res.Cursor.Offset,
		)
		return c.cfg.RunErrorExitCode
	}
	return ExitOK
}

func (c *Controller) closeStore(store Store) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		c.logger.Error("store close error", "error", err)
		return
	}
	c.logger.Info("store connection closed")
}

func (c *Controller) shutdownServer(srv *httpadapter.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		c.logger.Error("http server shutdown error", "error", err)
	}
}
