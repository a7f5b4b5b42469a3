// Command migrate copies service-area records from the source collection to
// the target collection, geocoding each record's city on the way.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/station-geocode-migrator/internal/adapter/google"
	kafkaadapter "github.com/couchcryptid/station-geocode-migrator/internal/adapter/kafka"
	"github.com/couchcryptid/station-geocode-migrator/internal/adapter/mongo"
	"github.com/couchcryptid/station-geocode-migrator/internal/config"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"github.com/couchcryptid/station-geocode-migrator/internal/observability"
	"github.com/couchcryptid/station-geocode-migrator/internal/pipeline"
	"github.com/couchcryptid/station-geocode-migrator/internal/runner"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return runner.ExitStartupFailure
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var geocoder domain.Geocoder = google.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout, metrics, logger,
		google.WithBaseURL(cfg.GeocodeBaseURL),
		google.WithRetryPolicy(google.RetryPolicy{
			MaxAttempts: cfg.GeocodeMaxAttempts,
			Delay:       cfg.GeocodeDelay,
		}),
	)
	if cfg.GeocodeCacheSize > 0 {
		geocoder = google.NewCachedGeocoder(geocoder, cfg.GeocodeCacheSize, metrics)
		logger.Info("geocode cache enabled", "cache_size", cfg.GeocodeCacheSize)
	}

	var mirrors []pipeline.RecordSink
	if cfg.KafkaEnabled() {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		mirrors = append(mirrors, publisher)
		logger.Info("kafka mirror enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	connect := func(ctx context.Context) (runner.Store, error) {
		store, err := mongo.Connect(ctx, mongo.OptionsFromConfig(cfg), logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := runner.New(cfg, connect, geocoder, logger, metrics, mirrors...).Run(ctx)
	logger.Info("shutdown complete", "exit_code", code)
	return code
}
