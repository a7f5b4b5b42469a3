package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/adapter/google"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// WriteMode selects how enriched batches are persisted.
type WriteMode string

const (
	// WriteModeInsert appends every batch. Re-running duplicates documents.
	WriteModeInsert WriteMode = "insert"
	// WriteModeUpsert replaces documents keyed by zipcode.
	WriteModeUpsert WriteMode = "upsert"
)

// Config holds all migration settings, populated from environment variables.
type Config struct {
	MongoURI            string
	DatabaseName        string
	SourceCollection    string
	TargetCollection    string
	MongoConnectTimeout time.Duration
	WriteMode           WriteMode
	EnsureGeoIndex      bool
	BatchSize           int
	ShutdownTimeout     time.Duration
	RunErrorExitCode    int
	LogLevel            string
	LogFormat           string
	MetricsAddr         string

	// Geocoding configuration.
	GoogleMapsAPIKey   string
	GeocodeBaseURL     string
	GeocodeTimeout     time.Duration
	GeocodeMaxAttempts int
	GeocodeDelay       time.Duration
	GeocodeCacheSize   int

	// Optional Kafka mirror of written records.
	KafkaBrokers []string
	KafkaTopic   string
}

// ErrMissingMongoURI is returned when MONGO_URI is not set.
var ErrMissingMongoURI = errors.New("MONGO_URI is required")

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parsePositiveDuration("MONGO_CONNECT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parsePositiveDuration("GEOCODE_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}
	geocodeDelay, err := parseDuration("GEOCODE_DELAY", "300ms")
	if err != nil {
		return nil, err
	}
	maxAttempts, err := parseInt("GEOCODE_MAX_ATTEMPTS", 3, 1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("GEOCODE_CACHE_SIZE", 0, 0)
	if err != nil {
		return nil, err
	}
	exitCode, err := parseInt("RUN_ERROR_EXIT_CODE", 1, 0)
	if err != nil {
		return nil, err
	}

	mode := WriteMode(sharedcfg.EnvOrDefault("WRITE_MODE", string(WriteModeInsert)))
	if mode != WriteModeInsert && mode != WriteModeUpsert {
		return nil, fmt.Errorf("invalid WRITE_MODE %q: want %q or %q", mode, WriteModeInsert, WriteModeUpsert)
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		MongoURI:            os.Getenv("MONGO_URI"),
		DatabaseName:        os.Getenv("DATABASE_NAME"),
		SourceCollection:    os.Getenv("SOURCE_COLLECTION_NAME"),
		TargetCollection:    os.Getenv("TARGET_COLLECTION_NAME"),
		MongoConnectTimeout: connectTimeout,
		WriteMode:           mode,
		EnsureGeoIndex:      os.Getenv("ENSURE_GEO_INDEX") == "true",
		BatchSize:           batchSize,
		ShutdownTimeout:     shutdownTimeout,
		RunErrorExitCode:    exitCode,
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsAddr:         os.Getenv("METRICS_ADDR"),

		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodeBaseURL:     sharedcfg.EnvOrDefault("GEOCODE_BASE_URL", google.DefaultBaseURL),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeMaxAttempts: maxAttempts,
		GeocodeDelay:       geocodeDelay,
		GeocodeCacheSize:   cacheSize,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "geocoded-stations"),
	}

	if cfg.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}
	if cfg.DatabaseName == "" {
		return nil, errors.New("DATABASE_NAME is required")
	}
	if cfg.SourceCollection == "" {
		return nil, errors.New("SOURCE_COLLECTION_NAME is required")
	}
	if cfg.TargetCollection == "" {
		return nil, errors.New("TARGET_COLLECTION_NAME is required")
	}
	if cfg.GoogleMapsAPIKey == "" {
		return nil, errors.New("GOOGLE_MAPS_API_KEY is required")
	}

	return cfg, nil
}

// KafkaEnabled reports whether written records are mirrored to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, minValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minValue {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minValue)
	}
	return n, nil
}
