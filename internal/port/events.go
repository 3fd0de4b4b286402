package port

import (
	"context"

	"taxdocs/internal/domain"
)

// EventPublisher publishes document events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}
