package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"walking-route-service/internal/adapters/httpclient"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry *geojson.Geometry `json:"geometry"`
		Distance float64           `json:"distance"`
		Duration float64           `json:"duration"`
	} `json:"routes"`
}

// OSRMClient fetches walking paths from an OSRM /route/v1/{profile} endpoint.
type OSRMClient struct {
	client  *httpclient.Client
	baseURL string
	log     *zap.Logger
}

// NewOSRMClient takes the full route service base, e.g.
// https://routing.openstreetmap.de/routed-foot/route/v1/walking.
func NewOSRMClient(client *httpclient.Client, baseURL string, log *zap.Logger) *OSRMClient {
	return &OSRMClient{client: client, baseURL: baseURL, log: log}
}

func formatPair(c domain.Coordinate) string {
	ll := c.LonLat()
	return strconv.FormatFloat(ll[0], 'f', -1, 64) + "," + strconv.FormatFloat(ll[1], 'f', -1, 64)
}

// Endpoint builds the request URL. The wire format is lon,lat.
func (o *OSRMClient) Endpoint(from, to domain.Coordinate) string {
	return fmt.Sprintf("%s/%s;%s?overview=full&geometries=geojson", o.baseURL, formatPair(from), formatPair(to))
}

// Route returns the first route's geometry. Any transport, status, payload or
// empty-result failure is reported as domain.ErrRouteUnavailable.
func (o *OSRMClient) Route(ctx context.Context, from, to domain.Coordinate) (_ domain.RouteGeometry, err error) {
	defer obs.Time(ctx, o.log, "osrm.Route")(&err)

	endpoint := o.Endpoint(from, to)

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		return httpclient.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w: %w", domain.ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("osrm route: %w: decode response: %w", domain.ErrRouteUnavailable, err)
	}

	if decoded.Code != "" && decoded.Code != "Ok" {
		return nil, fmt.Errorf("osrm route: %w: code %s: %s", domain.ErrRouteUnavailable, decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 || decoded.Routes[0].Geometry == nil {
		return nil, fmt.Errorf("osrm route: %w: no routes returned", domain.ErrRouteUnavailable)
	}

	line, ok := decoded.Routes[0].Geometry.Coordinates.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("osrm route: %w: unexpected geometry %q",
			domain.ErrRouteUnavailable, decoded.Routes[0].Geometry.Type)
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("osrm route: %w: empty geometry", domain.ErrRouteUnavailable)
	}

	out := make(domain.RouteGeometry, 0, len(line))
	for _, p := range line {
		out = append(out, domain.FromLonLat(p.Lon(), p.Lat()))
	}

	o.log.Debug("osrm route fetched",
		zap.Int("points", len(out)),
		zap.Float64("distance_m", decoded.Routes[0].Distance),
		zap.Float64("duration_s", decoded.Routes[0].Duration),
	)

	return out, nil
}
