// Command seed loads a JSON fixture of service-area records into the source
// collection for local runs of the migration.
//
// Usage:
//
//	go run ./cmd/seed -file cmd/seed/testdata/stations.json [-drop]
//
// Connection settings come from the same environment (or .env file) as
// cmd/migrate: MONGO_URI, DATABASE_NAME, SOURCE_COLLECTION_NAME, and
// TARGET_COLLECTION_NAME.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/adapter/mongo"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	file := flag.String("file", "", "JSON array of source records")
	drop := flag.Bool("drop", false, "drop the source collection before loading")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -file")
	}

	_ = godotenv.Load()

	records, err := loadRecords(*file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := mongo.Connect(ctx, mongo.Options{
		URI:              os.Getenv("MONGO_URI"),
		Database:         os.Getenv("DATABASE_NAME"),
		SourceCollection: os.Getenv("SOURCE_COLLECTION_NAME"),
		TargetCollection: os.Getenv("TARGET_COLLECTION_NAME"),
		ConnectTimeout:   10 * time.Second,
	}, sharedobs.NewLogger("warn", "text"))
	if err != nil {
		return err
	}
	defer store.Close(context.Background()) //nolint:errcheck // best-effort disconnect

	if *drop {
		if err := store.DropSource(ctx); err != nil {
			return fmt.Errorf("drop source: %w", err)
		}
	}

	n, err := store.InsertSource(ctx, records)
	if err != nil {
		return err
	}
	log.Printf("seeded %d records from %s", n, *file)
	return nil
}

func loadRecords(path string) ([]domain.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.SourceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}
