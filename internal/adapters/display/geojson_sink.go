package display

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"walking-route-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func toPoint(c domain.Coordinate) orb.Point {
	ll := c.LonLat()
	return orb.Point{ll[0], ll[1]}
}

// FeatureCollection renders a map view as GeoJSON: one Point feature per
// marker, a LineString for the route and the viewport as bbox.
func FeatureCollection(view domain.MapView) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if view.Region != nil {
		fc.BBox = geojson.BBox(view.Region.Bounds())
	}

	for _, m := range view.Markers {
		f := geojson.NewFeature(toPoint(m.Position))
		f.Properties["label"] = m.Label
		f.Properties["title"] = m.Title
		fc.Append(f)
	}

	if len(view.Polyline) > 0 {
		line := make(orb.LineString, 0, len(view.Polyline))
		for _, c := range view.Polyline {
			line = append(line, toPoint(c))
		}
		f := geojson.NewFeature(line)
		f.Properties["label"] = "route"
		f.Properties["stroke"] = domain.RouteStrokeColor
		f.Properties["stroke-width"] = domain.RouteStrokeWidth
		fc.Append(f)
	}

	return fc
}

// GeoJSONSink writes each rendered view to w as one line of GeoJSON.
type GeoJSONSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewGeoJSONSink(w io.Writer) *GeoJSONSink {
	return &GeoJSONSink{w: w}
}

func (s *GeoJSONSink) Render(ctx context.Context, view domain.MapView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := FeatureCollection(view).MarshalJSON()
	if err != nil {
		return fmt.Errorf("render geojson: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("render geojson: write: %w", err)
	}
	return nil
}

// JSONSink writes each view as plain JSON.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONSink{enc: enc}
}

func (s *JSONSink) Render(ctx context.Context, view domain.MapView) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(view); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}
