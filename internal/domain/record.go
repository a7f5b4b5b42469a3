package domain

// SourceRecord is a service-area document read from the source collection.
type SourceRecord struct {
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	Zipcode   string `bson:"zipcode" json:"zipcode"`
	Zone      string `bson:"zone" json:"zone"`
	FAStation string `bson:"fa_station" json:"fa_station"`
	Country   string `bson:"country" json:"country"` // ISO 3166-1 alpha-2
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a point from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Lat returns the latitude component.
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Lng returns the longitude component.
func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }

// TargetRecord is the enriched document written to the target collection.
type TargetRecord struct {
	City      string   `bson:"city" json:"city"`
	State     string   `bson:"state" json:"state"`
	Zipcode   string   `bson:"zipcode" json:"zipcode"`
	Zone      string   `bson:"zone" json:"zone"`
	FAStation string   `bson:"fa_station" json:"fa_station"`
	Country   string   `bson:"country" json:"country"`
	PlaceID   string   `bson:"place_id" json:"place_id"`
	Location  GeoPoint `bson:"location" json:"location"`
}
