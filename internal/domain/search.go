package domain

// SearchState is the view state owned by one route search workflow.
//
// SelectedLocation is the latest successful geocode result, or the latest
// origin when no search has succeeded yet. Route is replaced wholesale on every
// successful search and is never left stale for a previous destination.
type SearchState struct {
	Origin           *Coordinate   `json:"origin,omitempty"`
	SelectedLocation *Coordinate   `json:"selected_location,omitempty"`
	Route            RouteGeometry `json:"route"`
}

// Clone returns a deep copy that shares no memory with s.
func (s SearchState) Clone() SearchState {
	out := SearchState{Route: s.Route.Clone()}
	if s.Origin != nil {
		out.Origin = s.Origin.Ptr()
	}
	if s.SelectedLocation != nil {
		out.SelectedLocation = s.SelectedLocation.Ptr()
	}
	return out
}

// SearchResult is the outcome of one search. Warning carries ErrRouteUnavailable
// when the destination was applied but no route could be fetched.
type SearchResult struct {
	Location *Coordinate
	Route    RouteGeometry
	Warning  error
}
