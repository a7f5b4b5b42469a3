package pipeline

import (
	"context"

	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
)

// RecordEnricher implements Enricher by geocoding the record's city within
// its country and mapping the result onto a target record.
type RecordEnricher struct {
	geocoder domain.Geocoder
}

// NewEnricher creates a RecordEnricher backed by geocoder.
func NewEnricher(geocoder domain.Geocoder) *RecordEnricher {
	return &RecordEnricher{geocoder: geocoder}
}

func (e *RecordEnricher) Enrich(ctx context.Context, src domain.SourceRecord) (domain.TargetRecord, error) {
	geo, err := e.geocoder.Resolve(ctx, domain.AddressQuery(src), src.Country)
	if err != nil {
		return domain.TargetRecord{}, err
	}
	return domain.Enrich(src, geo), nil
}
