package domain

// RouteGeometry is an ordered path from origin to destination.
// It may be empty when no route was requested or none was found.
type RouteGeometry []Coordinate

// Clone returns an independent copy. A nil geometry stays nil.
func (r RouteGeometry) Clone() RouteGeometry {
	if r == nil {
		return nil
	}
	out := make(RouteGeometry, len(r))
	copy(out, r)
	return out
}

// Start and End report the first and last points of a non-empty route.
func (r RouteGeometry) Start() (Coordinate, bool) {
	if len(r) == 0 {
		return Coordinate{}, false
	}
	return r[0], true
}

func (r RouteGeometry) End() (Coordinate, bool) {
	if len(r) == 0 {
		return Coordinate{}, false
	}
	return r[len(r)-1], true
}
