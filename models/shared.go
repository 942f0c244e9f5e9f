package models

// GeoPoint is a GeoJSON point. Coordinates are stored as [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewPoint builds a GeoJSON point from a latitude/longitude pair.
func NewPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Valid reports whether the point carries a longitude and a latitude.
func (p *GeoPoint) Valid() bool {
	return p != nil && len(p.Coordinates) == 2
}

func (p *GeoPoint) Lat() float64 { return p.Coordinates[1] }
func (p *GeoPoint) Lng() float64 { return p.Coordinates[0] }
