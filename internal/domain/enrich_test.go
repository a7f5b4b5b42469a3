package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func austinSource() SourceRecord {
	return SourceRecord{
		City:      "Austin",
		State:     "TX",
		Zipcode:   "78701",
		Zone:      "Z1",
		FAStation: "Station 1",
		Country:   "US",
	}
}

func TestEnrich_MapsAllFields(t *testing.T) {
	got := Enrich(austinSource(), GeocodeResult{Lat: 30.2672, Lng: -97.7431, PlaceID: "ChIJLwPMoJm1RIYRetVp1EtGm10"})

	want := TargetRecord{
		City:      "Austin, TX",
		State:     "TX",
		Zipcode:   "78701",
		Zone:      "Z1",
		FAStation: "Station 1",
		Country:   "US",
		PlaceID:   "ChIJLwPMoJm1RIYRetVp1EtGm10",
		Location: GeoPoint{
			Type:        "Point",
			Coordinates: [2]float64{-97.7431, 30.2672},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Enrich mismatch (-want +got):\n%s", diff)
	}
}

func TestEnrich_Deterministic(t *testing.T) {
	geo := GeocodeResult{Lat: 1, Lng: 2, PlaceID: "p"}
	assert.Equal(t, Enrich(austinSource(), geo), Enrich(austinSource(), geo))
}

func TestEnrich_EmptyStateStillComposesCity(t *testing.T) {
	src := austinSource()
	src.State = ""
	got := Enrich(src, GeocodeResult{})
	assert.Equal(t, "Austin, ", got.City)
}

func TestGeoPoint_AxisOrder(t *testing.T) {
	p := NewGeoPoint(30.5, -97.25)
	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, -97.25, p.Lng())
	assert.Equal(t, 30.5, p.Lat())
}

func TestTargetRecord_JSONShape(t *testing.T) {
	rec := Enrich(austinSource(), GeocodeResult{Lat: 30.2672, Lng: -97.7431, PlaceID: "abc"})
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"city": "Austin, TX",
		"state": "TX",
		"zipcode": "78701",
		"zone": "Z1",
		"fa_station": "Station 1",
		"country": "US",
		"place_id": "abc",
		"location": {"type": "Point", "coordinates": [-97.7431, 30.2672]}
	}`, string(data))
}

func TestAddressQuery_UsesCity(t *testing.T) {
	assert.Equal(t, "Austin", AddressQuery(austinSource()))
}
