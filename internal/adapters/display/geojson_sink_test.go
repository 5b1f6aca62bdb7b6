package display

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"walking-route-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() domain.MapView {
	loc := domain.Coordinate{Latitude: 40.415, Longitude: -3.707}
	state := domain.SearchState{
		SelectedLocation: &loc,
		Route: domain.RouteGeometry{
			{Latitude: 40.415, Longitude: -3.707},
			{Latitude: 40.414, Longitude: -3.706},
		},
	}
	return domain.BuildMapView(state, 0.02)
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection(sampleView())
	require.Len(t, fc.Features, 4)

	assert.Equal(t, orb.Point{-3.707, 40.415}, fc.Features[0].Geometry)
	assert.Equal(t, "selected", fc.Features[0].Properties["label"])
	assert.Equal(t, "start", fc.Features[1].Properties["label"])
	assert.Equal(t, "end", fc.Features[2].Properties["label"])

	line, ok := fc.Features[3].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{-3.707, 40.415}, {-3.706, 40.414}}, line)
	assert.Equal(t, "#1e90ff", fc.Features[3].Properties["stroke"])
	assert.Equal(t, 4, fc.Features[3].Properties["stroke-width"])

	require.Len(t, fc.BBox, 4)
	assert.InDelta(t, -3.717, fc.BBox[0], 1e-9)
	assert.InDelta(t, 40.425, fc.BBox[3], 1e-9)
}

func TestFeatureCollectionEmptyView(t *testing.T) {
	fc := FeatureCollection(domain.BuildMapView(domain.SearchState{}, 0))
	assert.Empty(t, fc.Features)
	assert.Nil(t, fc.BBox)
}

func TestGeoJSONSinkRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewGeoJSONSink(&buf).Render(context.Background(), sampleView()))

	fc, err := geojson.UnmarshalFeatureCollection(bytes.TrimSpace(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, fc.Features, 4)
}

func TestJSONSinkRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONSink(&buf).Render(context.Background(), sampleView()))

	var got domain.MapView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.Markers, 3)
	assert.Len(t, got.Polyline, 2)
	require.NotNil(t, got.Region)
	assert.Equal(t, 0.02, got.Region.LatitudeDelta)
}
