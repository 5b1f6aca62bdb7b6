package dto

import (
	"walking-route-service/internal/domain"
)

// OriginRequest carries a device position. Pointers let binding reject
// missing fields while still accepting 0.
type OriginRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (r OriginRequest) Coordinate() domain.Coordinate {
	return domain.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type SearchRequest struct {
	Address string `json:"address"`
}

type SessionResponse struct {
	ID    string             `json:"id"`
	State domain.SearchState `json:"state"`
	View  *domain.MapView    `json:"view,omitempty"`
}

// NewSessionResponse encodes an empty route as [] so every response carries
// the same route shape.
func NewSessionResponse(id string, state domain.SearchState, view *domain.MapView) SessionResponse {
	if state.Route == nil {
		state.Route = domain.RouteGeometry{}
	}
	return SessionResponse{ID: id, State: state, View: view}
}

type SearchResponse struct {
	Location *domain.Coordinate   `json:"location,omitempty"`
	Route    domain.RouteGeometry `json:"route"`
	Warning  string               `json:"warning,omitempty"`
}

func NewSearchResponse(res domain.SearchResult) SearchResponse {
	out := SearchResponse{Location: res.Location, Route: res.Route}
	if out.Route == nil {
		out.Route = domain.RouteGeometry{}
	}
	if res.Warning != nil {
		out.Warning = domain.ErrRouteUnavailable.Error()
	}
	return out
}
