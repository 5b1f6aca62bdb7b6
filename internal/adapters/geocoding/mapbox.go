package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"walking-route-service/internal/adapters/httpclient"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

type mapboxResponse struct {
	Features []struct {
		Center []float64 `json:"center"` // [lon, lat]
	} `json:"features"`
}

// MapboxGeocoder implements forward geocoding with the Mapbox Geocoding API.
type MapboxGeocoder struct {
	client  *httpclient.Client
	token   string
	baseURL string
	limit   int
	log     *zap.Logger
}

func NewMapboxGeocoder(client *httpclient.Client, token, baseURL string, limit int, log *zap.Logger) *MapboxGeocoder {
	return &MapboxGeocoder{client: client, token: token, baseURL: baseURL, limit: limit, log: log}
}

func (m *MapboxGeocoder) Geocode(ctx context.Context, address string) (_ []domain.Coordinate, err error) {
	defer obs.Time(ctx, m.log, "mapbox.Geocode")(&err)

	params := url.Values{
		"access_token": {m.token},
		"limit":        {strconv.Itoa(m.limit)},
	}
	endpoint := fmt.Sprintf("%s/%s.json?%s", m.baseURL, url.PathEscape(address), params.Encode())

	resp, err := m.client.Do(ctx, func() (*http.Request, error) {
		return httpclient.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("mapbox geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("mapbox geocode: decode response: %w", err)
	}

	out := make([]domain.Coordinate, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		if len(f.Center) != 2 {
			continue
		}
		out = append(out, domain.FromLonLat(f.Center[0], f.Center[1]))
	}
	return out, nil
}
