package domain

import "fmt"

// Coordinate is an immutable geographic point in degrees (latitude, longitude).
// No range validation is performed; providers own that concern.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FromLonLat builds a Coordinate from a wire-order [lon, lat] pair.
// Every provider payload in GeoJSON axis order must be converted here.
func FromLonLat(lon, lat float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lon}
}

// LonLat returns the coordinate as [lon, lat] for external API compatibility.
func (c Coordinate) LonLat() []float64 { return []float64{c.Longitude, c.Latitude} }

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Ptr returns a pointer to a copy of c.
func (c Coordinate) Ptr() *Coordinate { return &c }
