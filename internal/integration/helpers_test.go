//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/station-geocode-migrator/internal/adapter/mongo"
	"github.com/couchcryptid/station-geocode-migrator/internal/config"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	testDatabase = "stations"
	testSource   = "service_areas"
	testTarget   = "service_areas_geocoded"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startMongo runs a MongoDB container for the duration of the test.
func startMongo(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start mongodb container")

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0", kafka.WithClusterID("geocode-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func connectStore(ctx context.Context, t *testing.T, uri string, mode config.WriteMode) *mongo.Store {
	t.Helper()
	store, err := mongo.Connect(ctx, mongo.Options{
		URI:              uri,
		Database:         testDatabase,
		SourceCollection: testSource,
		TargetCollection: testTarget,
		ConnectTimeout:   10 * time.Second,
		WriteMode:        mode,
	}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

// seedStations inserts n records with distinct zipcodes. Indexes in failing
// get the city "Nowhere", which fakeGeocoder cannot resolve.
func seedStations(ctx context.Context, t *testing.T, store *mongo.Store, n int, failing map[int]bool) {
	t.Helper()
	records := make([]domain.SourceRecord, n)
	for i := range records {
		city := "Austin"
		if failing[i] {
			city = "Nowhere"
		}
		records[i] = domain.SourceRecord{
			City:      city,
			State:     "TX",
			Zipcode:   zip(i),
			Zone:      "Z1",
			FAStation: "FA-1",
			Country:   "US",
		}
	}
	inserted, err := store.InsertSource(ctx, records)
	require.NoError(t, err)
	require.Equal(t, n, inserted)
}

func zip(i int) string {
	return fmt.Sprintf("%05d", 70000+i)
}

// fakeGeocoder serves Google-shaped responses, answering ZERO_RESULTS for
// cities starting with "Nowhere".
func fakeGeocoder(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Query().Get("address"), "Nowhere") {
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"results": []any{map[string]any{
				"place_id": "ChIJLwPMoJm1RIYRetVp1EtGm10",
				"geometry": map[string]any{
					"location": map[string]float64{"lat": 30.2672, "lng": -97.7431},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}
