package ports

import (
	"context"
	"walking-route-service/internal/domain"
)

// Receives search outcomes for downstream consumers.
type SearchEventPublisher interface {
	Publish(ctx context.Context, ev domain.SearchEvent) error
	Close() error
}

// Redraws a map from a view. Redraw scheduling is the host's responsibility.
type DisplaySink interface {
	Render(ctx context.Context, view domain.MapView) error
}
