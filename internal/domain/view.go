package domain

import "math"

const (
	// DefaultSpanDegrees is the latitude/longitude span of the map viewport.
	DefaultSpanDegrees = 0.01

	MarkerSelected = "selected"
	MarkerStart    = "start"
	MarkerEnd      = "end"

	RouteStrokeColor = "#1e90ff"
	RouteStrokeWidth = 4
)

var markerTitles = map[string]string{
	MarkerSelected: "Current location",
	MarkerStart:    "Start",
	MarkerEnd:      "End",
}

type Marker struct {
	Position Coordinate `json:"position"`
	Label    string     `json:"label"`
	Title    string     `json:"title"`
}

func newMarker(label string, at Coordinate) Marker {
	return Marker{Position: at, Label: label, Title: markerTitles[label]}
}

// Region is a viewport centered on a point with a fixed span.
type Region struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// Bounds returns [minLon, minLat, maxLon, maxLat].
func (r Region) Bounds() []float64 {
	halfLat := r.LatitudeDelta / 2
	halfLon := r.LongitudeDelta / 2
	return []float64{
		r.Center.Longitude - halfLon,
		r.Center.Latitude - halfLat,
		r.Center.Longitude + halfLon,
		r.Center.Latitude + halfLat,
	}
}

// MapView is everything a display sink needs to redraw.
type MapView struct {
	Region   *Region       `json:"region,omitempty"`
	Markers  []Marker      `json:"markers"`
	Polyline RouteGeometry `json:"polyline"`
}

// Markers projects the state into drawable markers: the selected location,
// then start and end of the route when one is present.
func Markers(s SearchState) []Marker {
	out := make([]Marker, 0, 3)
	if s.SelectedLocation != nil {
		out = append(out, newMarker(MarkerSelected, *s.SelectedLocation))
	}
	if start, ok := s.Route.Start(); ok {
		end, _ := s.Route.End()
		out = append(out, newMarker(MarkerStart, start), newMarker(MarkerEnd, end))
	}
	return out
}

// MapRegion centers a fixed-span viewport on the selected location.
// It is not fitted to the route. A non-positive or non-finite span uses
// DefaultSpanDegrees.
func MapRegion(s SearchState, span float64) (Region, bool) {
	if s.SelectedLocation == nil {
		return Region{}, false
	}
	if !(span > 0) || math.IsInf(span, 1) {
		span = DefaultSpanDegrees
	}
	return Region{
		Center:         *s.SelectedLocation,
		LatitudeDelta:  span,
		LongitudeDelta: span,
	}, true
}

func BuildMapView(s SearchState, span float64) MapView {
	v := MapView{
		Markers:  Markers(s),
		Polyline: s.Route.Clone(),
	}
	if v.Polyline == nil {
		v.Polyline = RouteGeometry{}
	}
	if r, ok := MapRegion(s, span); ok {
		v.Region = &r
	}
	return v
}
