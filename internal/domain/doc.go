// Package domain models fire-station service-area records and their
// geocoded form.
//
// # Source records
//
// Each document in the source collection describes one service area: a city
// and state, a postal code, the dispatch zone, the fire station ("fa_station")
// responsible for it, and an ISO 3166-1 alpha-2 country code. Only those six
// fields are consumed; any other fields on the source document are ignored.
//
// # Target records
//
// A target record is the source record plus the result of forward geocoding
// the city name, restricted to the record's country:
//
//	city      "<city>, <state>"  (e.g. "Austin, TX")
//	place_id  provider-specific place identifier
//	location  GeoJSON point {"type": "Point", "coordinates": [lng, lat]}
//
// Coordinates follow GeoJSON axis order (longitude first) so the target
// collection can carry a 2dsphere index on location.
//
// Target records are built only from source records whose geocoding
// succeeded; see [Enrich].
package domain
