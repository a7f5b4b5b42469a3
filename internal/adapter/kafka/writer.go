package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/station-geocode-migrator/internal/config"
	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Publisher mirrors written target records to a Kafka topic as GeoJSON
// features. It implements pipeline.RecordSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured mirror topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// InsertMany publishes one message per record in a single WriteMessages call.
func (p *Publisher) InsertMany(ctx context.Context, records []domain.TargetRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage encodes a TargetRecord as a GeoJSON Feature keyed by zipcode.
func serializeToMessage(rec domain.TargetRecord) (kafkago.Message, error) {
	data, err := json.Marshal(toFeature(rec))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize target record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Zipcode),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "place_id", Value: []byte(rec.PlaceID)},
			{Key: "country", Value: []byte(rec.Country)},
		},
	}, nil
}

func toFeature(rec domain.TargetRecord) *geojson.Feature {
	point := geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{rec.Location.Lng(), rec.Location.Lat()})
	return &geojson.Feature{
		ID:       rec.PlaceID,
		Geometry: point,
		Properties: map[string]any{
			"city":       rec.City,
			"state":      rec.State,
			"zipcode":    rec.Zipcode,
			"zone":       rec.Zone,
			"fa_station": rec.FAStation,
			"country":    rec.Country,
			"place_id":   rec.PlaceID,
		},
	}
}
