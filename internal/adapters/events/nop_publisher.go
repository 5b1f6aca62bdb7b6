package events

import (
	"context"
	"walking-route-service/internal/domain"
)

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.SearchEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
