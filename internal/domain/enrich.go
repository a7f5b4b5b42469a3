package domain

import "fmt"

// Enrich maps a source record and its geocoding result to a target record.
func Enrich(src SourceRecord, geo GeocodeResult) TargetRecord {
	return TargetRecord{
		City:      fmt.Sprintf("%s, %s", src.City, src.State),
		State:     src.State,
		Zipcode:   src.Zipcode,
		Zone:      src.Zone,
		FAStation: src.FAStation,
		Country:   src.Country,
		PlaceID:   geo.PlaceID,
		Location:  NewGeoPoint(geo.Lat, geo.Lng),
	}
}

// AddressQuery returns the free-text query used to geocode a source record.
func AddressQuery(src SourceRecord) string {
	return src.City
}
