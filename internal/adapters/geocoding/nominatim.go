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
	"golang.org/x/time/rate"
)

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocoder resolves addresses with an OpenStreetMap Nominatim /search endpoint.
// Requests are throttled client-side to honor the public usage policy.
type NominatimGeocoder struct {
	client    *httpclient.Client
	baseURL   string
	userAgent string
	limit     int
	limiter   *rate.Limiter
	log       *zap.Logger
}

func NewNominatimGeocoder(
	client *httpclient.Client,
	baseURL, userAgent string,
	rps float64,
	limit int,
	log *zap.Logger,
) *NominatimGeocoder {
	return &NominatimGeocoder{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		limit:     limit,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		log:       log,
	}
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ []domain.Coordinate, err error) {
	defer obs.Time(ctx, n.log, "nominatim.Geocode")(&err)

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nominatim geocode: wait for rate limiter: %w", err)
	}

	params := url.Values{
		"q":      {address},
		"format": {"json"},
		"limit":  {strconv.Itoa(n.limit)},
	}
	endpoint := n.baseURL + "?" + params.Encode()

	resp, err := n.client.Do(ctx, func() (*http.Request, error) {
		req, err := httpclient.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", n.userAgent)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("nominatim geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("nominatim geocode: decode response: %w", err)
	}

	out := make([]domain.Coordinate, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			n.log.Debug("skipping unparsable nominatim result",
				zap.String("lat", r.Lat), zap.String("lon", r.Lon))
			continue
		}
		out = append(out, domain.Coordinate{Latitude: lat, Longitude: lon})
	}

	return out, nil
}
