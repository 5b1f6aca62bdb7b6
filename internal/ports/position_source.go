package ports

import (
	"context"
	"walking-route-service/internal/domain"
)

// Device position capability. Returns domain.ErrPermissionDenied when the
// position is denied or unavailable.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}
