package domain

import "context"

// GeocodeResult contains location data returned by a geocoding provider.
type GeocodeResult struct {
	Lat     float64
	Lng     float64
	PlaceID string
}

// Geocoder resolves a free-text address within a country to coordinates.
type Geocoder interface {
	// Resolve geocodes query, restricted to countryCode. A returned error
	// that matches ErrGeocodingFailed is permanent for this record.
	Resolve(ctx context.Context, query, countryCode string) (GeocodeResult, error)
}
