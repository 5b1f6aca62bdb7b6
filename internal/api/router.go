package api

import (
	"walking-route-service/internal/api/handlers"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/ports"
	"walking-route-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps are the collaborators the HTTP layer needs. Handlers stay unaware of
// concrete adapters.
type Deps struct {
	Sessions  *services.SessionRegistry
	Publisher ports.SearchEventPublisher
	Metrics   *obs.Metrics
	Clock     clockwork.Clock
	Log       *zap.Logger

	SpanDegrees float64
	RateLimit   float64
	RateBurst   int
}

// NewRouter wires HTTP handlers with their dependencies and returns the engine.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(recovery(d.Log), requestID(), requestLogger(d.Log))

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	if d.RateLimit > 0 {
		v1.Use(newIPRateLimiter(rate.Limit(d.RateLimit), d.RateBurst).middleware())
	}

	sessions := handlers.NewSessionHandler(handlers.SessionHandlerConfig{
		Sessions:    d.Sessions,
		Publisher:   d.Publisher,
		Metrics:     d.Metrics,
		Clock:       d.Clock,
		Log:         d.Log,
		SpanDegrees: d.SpanDegrees,
	})
	sessions.RegisterRoutes(v1)

	return r
}
