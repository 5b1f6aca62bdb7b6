package position

import (
	"fmt"
	"strconv"
	"strings"
	"walking-route-service/internal/domain"
)

// Parse reads a "lat,lon" pair such as "40.4168,-3.7038".
func Parse(s string) (domain.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Coordinate{}, fmt.Errorf("parse position %q: want lat,lon", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse position %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse position %q: longitude: %w", s, err)
	}
	return domain.Coordinate{Latitude: lat, Longitude: lon}, nil
}
