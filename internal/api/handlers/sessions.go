package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"
	"walking-route-service/internal/adapters/display"
	"walking-route-service/internal/api/dto"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/ports"
	"walking-route-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type SessionHandlerConfig struct {
	Sessions    *services.SessionRegistry
	Publisher   ports.SearchEventPublisher
	Metrics     *obs.Metrics
	Clock       clockwork.Clock
	Log         *zap.Logger
	SpanDegrees float64
}

// SessionHandler exposes one route search workflow per session over HTTP.
type SessionHandler struct {
	cfg SessionHandlerConfig
}

func NewSessionHandler(cfg SessionHandlerConfig) *SessionHandler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &SessionHandler{cfg: cfg}
}

func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	s := rg.Group("/sessions")
	s.POST("", h.Create)
	s.GET("/:id", h.Get)
	s.DELETE("/:id", h.Delete)
	s.PUT("/:id/origin", h.SetOrigin)
	s.POST("/:id/search", h.Search)
	s.GET("/:id/view", h.View)
}

func (h *SessionHandler) session(c *gin.Context) (*services.Session, bool) {
	sess, err := h.cfg.Sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.cfg.Sessions.Create()
	c.JSON(http.StatusCreated, dto.NewSessionResponse(sess.ID, sess.Workflow.State(), nil))
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	view := sess.Workflow.View(h.cfg.SpanDegrees)
	c.JSON(http.StatusOK, dto.NewSessionResponse(sess.ID, sess.Workflow.State(), &view))
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.cfg.Sessions.Delete(c.Param("id")); err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) SetOrigin(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.OriginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	sess.Workflow.SetOrigin(req.Coordinate())
	c.JSON(http.StatusOK, dto.NewSessionResponse(sess.ID, sess.Workflow.State(), nil))
}

func (h *SessionHandler) Search(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := sess.Workflow.Search(c.Request.Context(), req.Address)
	h.publish(c.Request.Context(), sess.ID, req.Address, res, err)

	switch {
	case errors.Is(err, domain.ErrAddressNotFound):
		writeError(c, http.StatusNotFound, domain.ErrAddressNotFound.Error())
	case errors.Is(err, domain.ErrSearchInProgress):
		writeError(c, http.StatusConflict, domain.ErrSearchInProgress.Error())
	case err != nil:
		h.cfg.Log.Error("search failed", zap.String("session", sess.ID), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "search failed")
	default:
		c.JSON(http.StatusOK, dto.NewSearchResponse(res))
	}
}

func (h *SessionHandler) View(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	span := h.cfg.SpanDegrees
	if raw := c.Query("span"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			writeError(c, http.StatusBadRequest, "span must be a finite number")
			return
		}
		span = v
	}

	view := sess.Workflow.View(span)

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, view)
	case "geojson":
		raw, err := display.FeatureCollection(view).MarshalJSON()
		if err != nil {
			writeError(c, http.StatusInternalServerError, "render geojson failed")
			return
		}
		c.Data(http.StatusOK, "application/geo+json", raw)
	default:
		writeError(c, http.StatusBadRequest, "format must be json or geojson")
	}
}

func outcome(address string, res domain.SearchResult, err error) string {
	switch {
	case errors.Is(err, domain.ErrSearchInProgress):
		return domain.OutcomeBusy
	case err != nil:
		return domain.OutcomeNotFound
	case isBlank(address):
		return domain.OutcomeSkipped
	case res.Warning != nil:
		return domain.OutcomeRouteUnavailable
	default:
		return domain.OutcomeFound
	}
}

func (h *SessionHandler) publish(ctx context.Context, sessionID, address string, res domain.SearchResult, err error) {
	out := outcome(address, res, err)
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.Searches.WithLabelValues(out).Inc()
	}
	if h.cfg.Publisher == nil {
		return
	}

	ev := domain.SearchEvent{
		SessionID:   sessionID,
		Address:     address,
		Outcome:     out,
		RoutePoints: len(res.Route),
		At:          h.cfg.Clock.Now().UTC().Truncate(time.Millisecond),
	}
	if err == nil {
		ev.Location = res.Location
	}
	if res.Warning != nil {
		ev.Warning = res.Warning.Error()
	}

	if perr := h.cfg.Publisher.Publish(ctx, ev); perr != nil {
		h.cfg.Log.Warn("publish search event failed", zap.String("session", sessionID), zap.Error(perr))
	}
}
