package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	DefaultORSBaseURL   = "https://api.openrouteservice.org"
	DefaultMapboxURL    = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	DefaultOSRMBaseURL  = "https://routing.openstreetmap.de/routed-foot/route/v1/walking"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Geocoding.
	GeocoderProvider   string
	NominatimURL       string
	NominatimUserAgent string
	NominatimRPS       float64
	ORSAPIKey          string
	ORSBaseURL         string
	ORSBoundaryCountry string
	MapboxToken        string
	MapboxURL          string
	GeocoderTimeout    time.Duration
	GeocodeLimit       int

	// Routing.
	OSRMBaseURL    string
	RoutingTimeout time.Duration

	// Shared by every outbound provider call. 1 disables retries.
	ProviderMaxAttempts int

	// Optional infrastructure; empty disables the component.
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers     []string
	KafkaSearchTopic string

	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration

	APIRateLimit   float64
	APIRateBurst   int
	MapSpanDegrees float64
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		AppEnv:          Get("APP_ENV", "production"),
		LogLevel:        Get("LOG_LEVEL", "info"),
		HTTPAddr:        Get("HTTP_ADDR", ":8080"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),

		GeocoderProvider:   strings.ToLower(Get("GEOCODER_PROVIDER", "nominatim")),
		NominatimURL:       Get("NOMINATIM_URL", DefaultNominatimURL),
		NominatimUserAgent: Get("NOMINATIM_USER_AGENT", "walking-route-service/1.0"),
		NominatimRPS:       p.number("NOMINATIM_RPS", 1),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		ORSBaseURL:         Get("ORS_BASE_URL", DefaultORSBaseURL),
		ORSBoundaryCountry: os.Getenv("ORS_BOUNDARY_COUNTRY"),
		MapboxToken:        os.Getenv("MAPBOX_TOKEN"),
		MapboxURL:          Get("MAPBOX_URL", DefaultMapboxURL),
		GeocoderTimeout:    p.duration("GEOCODER_TIMEOUT", 5*time.Second),
		GeocodeLimit:       p.integer("GEOCODE_LIMIT", 5),

		OSRMBaseURL:    strings.TrimRight(Get("OSRM_BASE_URL", DefaultOSRMBaseURL), "/"),
		RoutingTimeout: p.duration("ROUTING_TIMEOUT", 10*time.Second),

		ProviderMaxAttempts: p.integer("PROVIDER_MAX_ATTEMPTS", 1),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       p.integer("REDIS_DB", 0),
		CacheTTL:      p.duration("CACHE_TTL", 24*time.Hour),

		KafkaBrokers:     ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSearchTopic: Get("KAFKA_SEARCH_TOPIC", "route-searches"),

		SessionIdleTTL:       p.duration("SESSION_IDLE_TTL", 30*time.Minute),
		SessionSweepInterval: p.duration("SESSION_SWEEP_INTERVAL", time.Minute),

		APIRateLimit:   p.number("API_RATE_LIMIT", 10),
		APIRateBurst:   p.integer("API_RATE_BURST", 20),
		MapSpanDegrees: p.number("MAP_SPAN_DEGREES", 0.01),
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.GeocoderProvider {
	case "nominatim":
		if c.NominatimRPS <= 0 {
			return errors.New("NOMINATIM_RPS must be positive")
		}
	case "ors":
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return errors.New("ORS_API_KEY is required when GEOCODER_PROVIDER=ors")
		}
	case "mapbox":
		if strings.TrimSpace(c.MapboxToken) == "" {
			return errors.New("MAPBOX_TOKEN is required when GEOCODER_PROVIDER=mapbox")
		}
	default:
		return fmt.Errorf("unknown GEOCODER_PROVIDER %q", c.GeocoderProvider)
	}

	if c.GeocodeLimit < 1 {
		return errors.New("GEOCODE_LIMIT must be at least 1")
	}
	if c.ProviderMaxAttempts < 1 {
		return errors.New("PROVIDER_MAX_ATTEMPTS must be at least 1")
	}
	if c.SessionIdleTTL <= 0 || c.SessionSweepInterval <= 0 {
		return errors.New("SESSION_IDLE_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.APIRateLimit <= 0 || c.APIRateBurst < 1 {
		return errors.New("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaSearchTopic == "" {
		return errors.New("KAFKA_SEARCH_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// parser keeps the first parse failure so Load can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	if d <= 0 {
		p.fail(key, raw, errors.New("must be positive"))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return n
}

func (p *parser) number(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return f
}
