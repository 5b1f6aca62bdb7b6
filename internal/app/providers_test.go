package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"walking-route-service/internal/adapters/geocoding"
	"walking-route-service/internal/adapters/routing"
	"walking-route-service/internal/config"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProviders serves a Nominatim search and an OSRM route on one server.
func fakeProviders(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	geocodeCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			geocodeCalls++
			_, _ = w.Write([]byte(`[{"lat":"40.415","lon":"-3.707"}]`))
		case strings.HasPrefix(r.URL.Path, "/route/v1/walking/"):
			_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"type":"LineString","coordinates":[[-3.707,40.415],[-3.706,40.414]]}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &geocodeCalls
}

func testConfig(t *testing.T, srvURL string) *config.Config {
	t.Helper()
	t.Setenv("NOMINATIM_URL", srvURL+"/search")
	t.Setenv("NOMINATIM_RPS", "1000")
	t.Setenv("OSRM_BASE_URL", srvURL+"/route/v1/walking")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuildProvidersEndToEnd(t *testing.T) {
	srv, _ := fakeProviders(t)
	cfg := testConfig(t, srv.URL)

	p, err := BuildProviders(context.Background(), cfg, obs.NewMetricsForTesting(), zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	_, ok := p.Router.(*routing.OSRMClient)
	assert.True(t, ok, "no cache configured")

	w := services.NewRouteSearchWorkflow(p.Geocoder, p.Router, zap.NewNop())
	w.SetOrigin(domain.Coordinate{Latitude: 40.0, Longitude: -3.0})

	res, err := w.Search(context.Background(), "Plaza Mayor")
	require.NoError(t, err)
	assert.NoError(t, res.Warning)
	assert.Equal(t, domain.Coordinate{Latitude: 40.415, Longitude: -3.707}, *res.Location)
	assert.Equal(t, domain.RouteGeometry{
		{Latitude: 40.415, Longitude: -3.707},
		{Latitude: 40.414, Longitude: -3.706},
	}, res.Route)
}

func TestBuildProvidersWithRedisCache(t *testing.T) {
	srv, geocodeCalls := fakeProviders(t)
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	cfg := testConfig(t, srv.URL)

	p, err := BuildProviders(context.Background(), cfg, obs.NewMetricsForTesting(), zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	_, ok := p.Geocoder.(*geocoding.CachedGeocoder)
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		got, err := p.Geocoder.Geocode(context.Background(), "Plaza Mayor")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, 1, *geocodeCalls)
	assert.True(t, mr.Exists("geocode:plaza mayor"))
}

func TestBuildProvidersRedisUnreachable(t *testing.T) {
	srv, _ := fakeProviders(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("REDIS_ADDR", addr)
	cfg := testConfig(t, srv.URL)

	_, err = BuildProviders(context.Background(), cfg, obs.NewMetricsForTesting(), zap.NewNop())
	require.Error(t, err)
}
