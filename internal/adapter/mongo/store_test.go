package mongo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/config"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

func testRecord(zip string) domain.TargetRecord {
	return domain.Enrich(domain.SourceRecord{
		City:      "Austin",
		State:     "TX",
		Zipcode:   zip,
		Zone:      "Z1",
		FAStation: "Station 1",
		Country:   "US",
	}, domain.GeocodeResult{Lat: 30.2672, Lng: -97.7431, PlaceID: "austin-" + zip})
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(100, 50)

	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(100), *opts.Skip)
	assert.Equal(t, int64(50), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, opts.Sort)
}

func TestTargetRecord_BSONShape(t *testing.T) {
	data, err := bson.Marshal(testRecord("78701"))
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(data, &doc))

	assert.Equal(t, "Austin, TX", doc["city"])
	assert.Equal(t, "78701", doc["zipcode"])
	assert.Equal(t, "Station 1", doc["fa_station"])
	assert.Equal(t, "austin-78701", doc["place_id"])

	loc, ok := doc["location"].(bson.M)
	require.True(t, ok, "location should be an embedded document")
	assert.Equal(t, "Point", loc["type"])
	assert.Equal(t, bson.A{-97.7431, 30.2672}, loc["coordinates"])
}

func TestSourceRecord_DecodeIgnoresExtraFields(t *testing.T) {
	data, err := bson.Marshal(bson.M{
		"_id":        "abc",
		"city":       "Austin",
		"state":      "TX",
		"zipcode":    "78701",
		"zone":       "Z1",
		"fa_station": "Station 1",
		"country":    "US",
		"legacy_ref": 42,
	})
	require.NoError(t, err)

	var rec domain.SourceRecord
	require.NoError(t, bson.Unmarshal(data, &rec))
	assert.Equal(t, domain.SourceRecord{
		City: "Austin", State: "TX", Zipcode: "78701", Zone: "Z1", FAStation: "Station 1", Country: "US",
	}, rec)
}

func TestToDocuments_PreservesOrder(t *testing.T) {
	records := []domain.TargetRecord{testRecord("1"), testRecord("2"), testRecord("3")}
	docs := toDocuments(records)

	require.Len(t, docs, 3)
	for i, d := range docs {
		assert.Equal(t, records[i], d)
	}
}

func TestUpsertModels_KeyedByZipcode(t *testing.T) {
	records := []domain.TargetRecord{testRecord("78701"), testRecord("78702")}
	models := upsertModels(records)

	require.Len(t, models, 2)
	for i, m := range models {
		replace, ok := m.(*mongodriver.ReplaceOneModel)
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "zipcode", Value: records[i].Zipcode}}, replace.Filter)
		assert.Equal(t, records[i], replace.Replacement)
		require.NotNil(t, replace.Upsert)
		assert.True(t, *replace.Upsert)
	}
}

func TestGeoIndexModel(t *testing.T) {
	m := geoIndexModel()
	assert.Equal(t, bson.D{{Key: "location", Value: "2dsphere"}}, m.Keys)
	require.NotNil(t, m.Options.Name)
	assert.Equal(t, "location_2dsphere", *m.Options.Name)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		MongoURI:            "mongodb://db:27017",
		DatabaseName:        "fire",
		SourceCollection:    "raw",
		TargetCollection:    "geo",
		MongoConnectTimeout: 3 * time.Second,
		WriteMode:           config.WriteModeUpsert,
	}
	assert.Equal(t, Options{
		URI:              "mongodb://db:27017",
		Database:         "fire",
		SourceCollection: "raw",
		TargetCollection: "geo",
		ConnectTimeout:   3 * time.Second,
		WriteMode:        config.WriteModeUpsert,
	}, OptionsFromConfig(cfg))
}

func TestConnect_EmptyURI(t *testing.T) {
	_, err := Connect(context.Background(), Options{ConnectTimeout: time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorIs(t, err, domain.ErrConnectionFailed)
}

func TestConnect_InvalidURI(t *testing.T) {
	_, err := Connect(context.Background(), Options{URI: "not-a-uri", ConnectTimeout: time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.ErrorIs(t, err, domain.ErrConnectionFailed)
}

func TestPageOptions_ZeroLimitScansAll(t *testing.T) {
	opts := pageOptions(0, 0)

	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(0), *opts.Limit, "mongo treats a zero limit as unbounded")
}

func TestInsertSource_EmptyIsNoop(t *testing.T) {
	var s Store
	n, err := s.InsertSource(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
