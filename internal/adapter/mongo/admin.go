package mongo

import (
	"context"
	"fmt"

	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// InsertSource loads fixture records into the source collection.
func (s *Store) InsertSource(ctx context.Context, records []domain.SourceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	docs := make([]any, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	res, err := s.source.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert source records: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// DropSource removes every document from the source collection.
func (s *Store) DropSource(ctx context.Context) error {
	return s.source.Drop(ctx)
}

// Counts returns the number of documents in the source and target collections.
func (s *Store) Counts(ctx context.Context) (source, target int64, err error) {
	source, err = s.source.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, 0, fmt.Errorf("count source: %w", err)
	}
	target, err = s.target.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, 0, fmt.Errorf("count target: %w", err)
	}
	return source, target, nil
}

// ScanTarget calls fn for every target document in _id order.
func (s *Store) ScanTarget(ctx context.Context, fn func(domain.TargetRecord) error) error {
	cur, err := s.target.Find(ctx, bson.D{}, pageOptions(0, 0))
	if err != nil {
		return fmt.Errorf("find target: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var rec domain.TargetRecord
		if err := cur.Decode(&rec); err != nil {
			return fmt.Errorf("decode target: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return cur.Err()
}
