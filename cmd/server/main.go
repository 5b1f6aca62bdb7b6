package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"walking-route-service/internal/api"
	"walking-route-service/internal/app"
	"walking-route-service/internal/config"
	"walking-route-service/internal/platform/logger"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, cfg.LogLevel, "walkroute-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := obs.NewMetrics()
	clock := clockwork.NewRealClock()

	providers, err := app.BuildProviders(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := providers.Close(); err != nil {
			log.Warn("close providers", zap.Error(err))
		}
	}()

	workflowLog := log.Named("workflow")
	sessions := services.NewSessionRegistry(func() *services.RouteSearchWorkflow {
		return services.NewRouteSearchWorkflow(providers.Geocoder, providers.Router, workflowLog)
	}, cfg.SessionIdleTTL, clock, metrics, log.Named("sessions"))

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Sessions:    sessions,
		Publisher:   providers.Publisher,
		Metrics:     metrics,
		Clock:       clock,
		Log:         log.Named("http"),
		SpanDegrees: cfg.MapSpanDegrees,
		RateLimit:   cfg.APIRateLimit,
		RateBurst:   cfg.APIRateBurst,
	})

	// Write timeout covers a cold geocode plus route call.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.GeocoderTimeout + cfg.RoutingTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("geocoder", cfg.GeocoderProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, cfg.SessionSweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
