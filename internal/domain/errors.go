package domain

import "errors"

var (
	// ErrAddressNotFound means the geocoder returned no candidates or failed.
	ErrAddressNotFound = errors.New("address not found")

	// ErrRouteUnavailable means the routing provider failed or returned no path.
	ErrRouteUnavailable = errors.New("route unavailable")

	// ErrPermissionDenied means no device position is available.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrSearchInProgress is returned when a search is submitted while another is outstanding.
	ErrSearchInProgress = errors.New("search already in progress")

	// ErrSessionNotFound means no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
)
