// Command verify checks the target collection after a migration: document
// counts against the source, the shape of every enriched record, and
// duplicate zipcodes left by repeated insert-mode runs.
//
// Usage:
//
//	go run ./cmd/verify [-strict]
//
// With -strict, duplicate zipcodes fail verification.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/adapter/mongo"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
)

func main() {
	strict := flag.Bool("strict", false, "treat duplicate zipcodes as failures")
	flag.Parse()

	_ = godotenv.Load()
	os.Exit(run(*strict))
}

func run(strict bool) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := mongo.Connect(ctx, mongo.Options{
		URI:              os.Getenv("MONGO_URI"),
		Database:         os.Getenv("DATABASE_NAME"),
		SourceCollection: os.Getenv("SOURCE_COLLECTION_NAME"),
		TargetCollection: os.Getenv("TARGET_COLLECTION_NAME"),
		ConnectTimeout:   10 * time.Second,
	}, sharedobs.NewLogger("warn", "text"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	defer store.Close(context.Background()) //nolint:errcheck // best-effort disconnect

	fmt.Println("=== Station Geocode Migration Verification ===")
	fmt.Println()

	sourceCount, targetCount, err := store.Counts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	var records []domain.TargetRecord
	if err := store.ScanTarget(ctx, func(r domain.TargetRecord) error {
		records = append(records, r)
		return nil
	}); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkCounts(sourceCount, targetCount),
		checkRecordShape(records),
		checkDuplicates(records, strict),
	}

	fmt.Printf("Records: %d source, %d target\n\n", sourceCount, targetCount)
	return report(phases)
}

func report(phases []*phase) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
		for _, w := range p.warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nVerification FAILED.")
	return 1
}
