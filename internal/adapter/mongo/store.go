// Package mongo adapts a MongoDB database to the pipeline's page reader and
// batch sink.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/config"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Options selects the database, collections, and write behaviour.
type Options struct {
	URI              string
	Database         string
	SourceCollection string
	TargetCollection string
	ConnectTimeout   time.Duration
	WriteMode        config.WriteMode
}

// OptionsFromConfig extracts store options from the service configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URI:              cfg.MongoURI,
		Database:         cfg.DatabaseName,
		SourceCollection: cfg.SourceCollection,
		TargetCollection: cfg.TargetCollection,
		ConnectTimeout:   cfg.MongoConnectTimeout,
		WriteMode:        cfg.WriteMode,
	}
}

// Store holds the single client connection shared by the page reader and the
// batch sink. It implements pipeline.PageReader and pipeline.RecordSink.
type Store struct {
	client *mongodriver.Client
	source *mongodriver.Collection
	target *mongodriver.Collection
	mode   config.WriteMode
	logger *slog.Logger
}

// Connect opens a client and pings the primary. Any failure is wrapped with
// domain.ErrConnectionFailed.
func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("%w: empty URI", domain.ErrConnectionFailed)
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongodriver.Connect(connectCtx, options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectionFailed, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping: %w", domain.ErrConnectionFailed, err)
	}

	db := client.Database(opts.Database)
	mode := opts.WriteMode
	if mode == "" {
		mode = config.WriteModeInsert
	}
	logger.Info("connected to mongodb",
		"database", opts.Database,
		"source", opts.SourceCollection,
		"target", opts.TargetCollection,
		"write_mode", mode,
	)
	return &Store{
		client: client,
		source: db.Collection(opts.SourceCollection),
		target: db.Collection(opts.TargetCollection),
		mode:   mode,
		logger: logger,
	}, nil
}

// FetchPage reads up to limit source records starting at offset. Records are
// ordered by _id so consecutive pages neither overlap nor skip documents.
func (s *Store) FetchPage(ctx context.Context, offset, limit int) ([]domain.SourceRecord, error) {
	cur, err := s.source.Find(ctx, bson.D{}, pageOptions(offset, limit))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	records := make([]domain.SourceRecord, 0, limit)
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return records, nil
}

// InsertMany persists records in a single round trip. In insert mode this is
// one InsertMany call; re-running the migration duplicates documents. In
// upsert mode it is one ordered BulkWrite replacing documents by zipcode.
func (s *Store) InsertMany(ctx context.Context, records []domain.TargetRecord) error {
	if s.mode == config.WriteModeUpsert {
		_, err := s.target.BulkWrite(ctx, upsertModels(records), options.BulkWrite().SetOrdered(true))
		return err
	}
	_, err := s.target.InsertMany(ctx, toDocuments(records))
	return err
}

// EnsureGeoIndex creates a 2dsphere index on the target location field.
func (s *Store) EnsureGeoIndex(ctx context.Context) error {
	name, err := s.target.Indexes().CreateOne(ctx, geoIndexModel())
	if err != nil {
		return fmt.Errorf("create geo index: %w", err)
	}
	s.logger.Info("geo index ready", "index", name)
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func pageOptions(offset, limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
}

func toDocuments(records []domain.TargetRecord) []any {
	docs := make([]any, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	return docs
}

func upsertModels(records []domain.TargetRecord) []mongodriver.WriteModel {
	models := make([]mongodriver.WriteModel, len(records))
	for i := range records {
		models[i] = mongodriver.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "zipcode", Value: records[i].Zipcode}}).
			SetReplacement(records[i]).
			SetUpsert(true)
	}
	return models
}

func geoIndexModel() mongodriver.IndexModel {
	return mongodriver.IndexModel{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("location_2dsphere"),
	}
}
