// Command walkroute runs one address search from the command line and prints
// the resulting map view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"walking-route-service/internal/adapters/display"
	"walking-route-service/internal/adapters/position"
	"walking-route-service/internal/app"
	"walking-route-service/internal/config"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/logger"
	"walking-route-service/internal/ports"
	"walking-route-service/internal/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type options struct {
	address string
	origin  string
	span    float64
	format  string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.address, "address", "", "address to search for")
	flag.StringVar(&opts.origin, "origin", "", "current position as lat,lon; routing is skipped when empty")
	flag.Float64Var(&opts.span, "span", 0, "map span in degrees (default MAP_SPAN_DEGREES)")
	flag.StringVar(&opts.format, "format", "json", "output format: json or geojson")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if opts.span <= 0 {
		opts.span = cfg.MapSpanDegrees
	}

	// Logs go to stderr so stdout carries only the view.
	log, err := logger.NewNamed(cfg.AppEnv, cfg.LogLevel, "walkroute")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout, log); err != nil {
		log.Error("search failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer, log *zap.Logger) error {
	sink, err := newSink(opts.format, out)
	if err != nil {
		return err
	}

	var origin *domain.Coordinate
	if opts.origin != "" {
		c, err := position.Parse(opts.origin)
		if err != nil {
			return err
		}
		origin = &c
	}

	providers, err := app.BuildProviders(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer providers.Close()

	return search(ctx, services.NewRouteSearchWorkflow(providers.Geocoder, providers.Router, log),
		position.NewStaticSource(origin), sink, opts, log)
}

func newSink(format string, out io.Writer) (ports.DisplaySink, error) {
	switch format {
	case "json":
		return display.NewJSONSink(out), nil
	case "geojson":
		return display.NewGeoJSONSink(out), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// search feeds the device position into the workflow, runs one search and renders the view.
func search(
	ctx context.Context,
	w *services.RouteSearchWorkflow,
	src ports.PositionSource,
	sink ports.DisplaySink,
	opts options,
	log *zap.Logger,
) error {
	pos, err := src.CurrentPosition(ctx)
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		log.Warn("no current position; routing disabled", zap.Error(err))
	case err != nil:
		return fmt.Errorf("read position: %w", err)
	default:
		w.SetOrigin(pos)
	}

	res, err := w.Search(ctx, opts.address)
	if err != nil {
		return err
	}
	if res.Warning != nil {
		log.Warn("route unavailable", zap.Error(res.Warning))
	}

	return sink.Render(ctx, w.View(opts.span))
}
