package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"walking-route-service/internal/adapters/httpclient"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses using OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	country string
	limit   int
	log     *zap.Logger
}

// NewORSGeocoder builds the client. country optionally restricts results
// to one ISO country code.
func NewORSGeocoder(client *httpclient.Client, apiKey, baseURL, country string, limit int, log *zap.Logger) *ORSGeocoder {
	return &ORSGeocoder{
		client:  client,
		apiKey:  apiKey,
		baseURL: baseURL,
		country: country,
		limit:   limit,
		log:     log,
	}
}

func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ []domain.Coordinate, err error) {
	defer obs.Time(ctx, o.log, "ors.Geocode")(&err)

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		req, err := httpclient.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", o.apiKey)

		q := req.URL.Query()
		q.Set("text", address)
		q.Set("size", strconv.Itoa(o.limit))
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ors geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("ors geocode: decode response: %w", err)
	}

	out := make([]domain.Coordinate, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		coords := f.Geometry.Coordinates
		if len(coords) != 2 {
			o.log.Debug("skipping malformed ors feature",
				zap.String("address", address), zap.Float64s("coordinates", coords))
			continue
		}
		out = append(out, domain.FromLonLat(coords[0], coords[1]))
	}

	return out, nil
}
