//go:build google

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Google Geocoding API and require GOOGLE_MAPS_API_KEY.
// Run with: go test -tags=google ./internal/adapter/google/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("GOOGLE_MAPS_API_KEY")
	if key == "" {
		t.Fatal("GOOGLE_MAPS_API_KEY must be set to run smoke tests")
	}
	return NewClient(key, 10*time.Second, observability.NewMetricsForTesting(), discardLogger())
}

func TestSmoke_Resolve(t *testing.T) {
	c := smokeClient(t)

	got, err := c.Resolve(context.Background(), "Austin", "US")
	require.NoError(t, err)

	assert.InDelta(t, 30.27, got.Lat, 0.1, "lat should be near Austin")
	assert.InDelta(t, -97.74, got.Lng, 0.1, "lng should be near Austin")
	assert.NotEmpty(t, got.PlaceID)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.Resolve(context.Background(), "Dallas", "US")
	require.NoError(t, err)

	r2, err := cached.Resolve(context.Background(), "Dallas", "US")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
