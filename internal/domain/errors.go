package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed is returned when the store cannot be reached at startup.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrGeocodingFailed marks a record whose geocoding failed on every attempt.
	ErrGeocodingFailed = errors.New("geocoding failed")

	// ErrWriteFailed marks a batch the target store refused.
	ErrWriteFailed = errors.New("write failed")

	// ErrEmptyQuery is returned for records with no address to geocode.
	ErrEmptyQuery = errors.New("empty address query")

	// ErrNoResults is returned when the provider answers with zero results.
	ErrNoResults = errors.New("no results found for location")
)

// GeocodingError is a permanent geocoding failure for one record.
type GeocodingError struct {
	Query    string
	Country  string
	Attempts int
	Err      error
}

func (e *GeocodingError) Error() string {
	return fmt.Sprintf("geocode %q (country %q) failed after %d attempts: %v",
		e.Query, e.Country, e.Attempts, e.Err)
}

func (e *GeocodingError) Unwrap() error { return e.Err }

// Is reports GeocodingError as ErrGeocodingFailed.
func (e *GeocodingError) Is(target error) bool { return target == ErrGeocodingFailed }

// WriteError wraps a store error for a whole batch.
type WriteError struct {
	Records int
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write batch of %d records: %v", e.Records, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is reports WriteError as ErrWriteFailed.
func (e *WriteError) Is(target error) bool { return target == ErrWriteFailed }
