package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"walking-route-service/internal/adapters/geocoding"
	"walking-route-service/internal/adapters/routing"
	"walking-route-service/internal/api/dto"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"
	"walking-route-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	plaza      = domain.Coordinate{Latitude: 40.415, Longitude: -3.707}
	plazaRoute = domain.RouteGeometry{{Latitude: 40.415, Longitude: -3.707}, {Latitude: 40.414, Longitude: -3.706}}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SearchEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.SearchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	router    *gin.Engine
	routing   *routing.MockRouter
	publisher *recordingPublisher
	metrics   *obs.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	geo := geocoding.NewMockGeocoder(map[string][]domain.Coordinate{"Plaza Mayor": {plaza}})
	router := routing.NewMockRouter(plazaRoute, nil)
	factory := func() *services.RouteSearchWorkflow {
		return services.NewRouteSearchWorkflow(geo, router, zap.NewNop())
	}

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	metrics := obs.NewMetricsForTesting()
	pub := &recordingPublisher{}

	h := NewSessionHandler(SessionHandlerConfig{
		Sessions:    services.NewSessionRegistry(factory, time.Hour, clock, metrics, zap.NewNop()),
		Publisher:   pub,
		Metrics:     metrics,
		Clock:       clock,
		Log:         zap.NewNop(),
		SpanDegrees: domain.DefaultSpanDegrees,
	})

	engine := gin.New()
	engine.GET("/health", Health)
	h.RegisterRoutes(engine.Group("/api/v1"))

	return &harness{router: engine, routing: router, publisher: pub, metrics: metrics}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) createSession(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestSessionStateRouteIsAlwaysArray(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID    string `json:"id"`
		State struct {
			Route json.RawMessage `json:"route"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.JSONEq(t, `[]`, string(created.State.Route))

	rec = h.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.JSONEq(t, `[]`, string(created.State.Route))
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSearchFlow(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)
	base := "/api/v1/sessions/" + id

	rec := h.do(t, http.MethodPut, base+"/origin", `{"latitude":40.0,"longitude":-3.0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, base+"/search", `{"address":"Plaza Mayor"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, plaza, *res.Location)
	assert.Equal(t, plazaRoute, res.Route)
	assert.Empty(t, res.Warning)

	rec = h.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sess dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, plaza, *sess.State.SelectedLocation)
	require.NotNil(t, sess.View)
	assert.Len(t, sess.View.Markers, 3)

	require.Len(t, h.publisher.events, 1)
	ev := h.publisher.events[0]
	assert.Equal(t, id, ev.SessionID)
	assert.Equal(t, domain.OutcomeFound, ev.Outcome)
	assert.Equal(t, 2, ev.RoutePoints)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Searches.WithLabelValues(domain.OutcomeFound)))
}

func TestSearchAddressNotFound(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)

	rec := h.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", `{"address":"Atlantis"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"address not found"}`, rec.Body.String())

	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, domain.OutcomeNotFound, h.publisher.events[0].Outcome)
	assert.Nil(t, h.publisher.events[0].Location)
}

func TestSearchRouteUnavailableIsWarning(t *testing.T) {
	h := newHarness(t)
	h.routing.Err = errors.New("down")
	id := h.createSession(t)
	base := "/api/v1/sessions/" + id

	h.do(t, http.MethodPut, base+"/origin", `{"latitude":40.0,"longitude":-3.0}`)
	rec := h.do(t, http.MethodPost, base+"/search", `{"address":"Plaza Mayor"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "route unavailable", res.Warning)
	assert.Empty(t, res.Route)
	assert.Equal(t, plaza, *res.Location)

	assert.Equal(t, domain.OutcomeRouteUnavailable, h.publisher.events[0].Outcome)
}

func TestSearchBlankAddress(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)

	rec := h.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", `{"address":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"route":[]}`, rec.Body.String())
	assert.Equal(t, domain.OutcomeSkipped, h.publisher.events[0].Outcome)
}

func TestSetOriginValidation(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)
	path := "/api/v1/sessions/" + id + "/origin"

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, path, `{"latitude":40.0}`).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, path, `not json`).Code)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodPut, path, `{"latitude":0,"longitude":0}`).Code)
}

func TestUnknownSession(t *testing.T) {
	h := newHarness(t)
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/sessions/nope", ""},
		{http.MethodDelete, "/api/v1/sessions/nope", ""},
		{http.MethodPut, "/api/v1/sessions/nope/origin", `{"latitude":1,"longitude":1}`},
		{http.MethodPost, "/api/v1/sessions/nope/search", `{"address":"x"}`},
		{http.MethodGet, "/api/v1/sessions/nope/view", ""},
	} {
		rec := h.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
	}
}

func TestDeleteSession(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/v1/sessions/"+id, "").Code)
}

func TestView(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)
	base := "/api/v1/sessions/" + id

	h.do(t, http.MethodPut, base+"/origin", `{"latitude":40.0,"longitude":-3.0}`)
	h.do(t, http.MethodPost, base+"/search", `{"address":"Plaza Mayor"}`)

	rec := h.do(t, http.MethodGet, base+"/view?span=0.02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view domain.MapView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 0.02, view.Region.LatitudeDelta)
	assert.Equal(t, plazaRoute, view.Polyline)

	rec = h.do(t, http.MethodGet, base+"/view?format=geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "#1e90ff", fc.Features[3].Properties["stroke"])

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, base+"/view?span=wide", "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, base+"/view?format=kml", "").Code)
}

func TestViewRejectsNonFiniteSpan(t *testing.T) {
	h := newHarness(t)
	id := h.createSession(t)
	base := "/api/v1/sessions/" + id
	h.do(t, http.MethodPut, base+"/origin", `{"latitude":40.0,"longitude":-3.0}`)

	for _, q := range []string{"span=NaN", "span=Inf", "span=-Inf", "format=geojson&span=NaN"} {
		rec := h.do(t, http.MethodGet, base+"/view?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Contains(t, rec.Body.String(), "span must be a finite number", q)
	}
}
