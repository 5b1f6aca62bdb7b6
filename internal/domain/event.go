package domain

import "time"

const (
	OutcomeFound            = "found"
	OutcomeRouteUnavailable = "route_unavailable"
	OutcomeNotFound         = "not_found"
	OutcomeBusy             = "busy"
	OutcomeSkipped          = "skipped"
)

// SearchEvent records the outcome of one search for downstream consumers.
type SearchEvent struct {
	SessionID   string      `json:"session_id"`
	Address     string      `json:"address"`
	Outcome     string      `json:"outcome"`
	Location    *Coordinate `json:"location,omitempty"`
	RoutePoints int         `json:"route_points"`
	Warning     string      `json:"warning,omitempty"`
	At          time.Time   `json:"at"`
}
