// Package noop provides an EventPublisher that discards events.
package noop

import (
	"context"

	"go.uber.org/zap"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

type noopPublisher struct {
	log *zap.Logger
}

// NewNoopPublisher creates an EventPublisher that logs events at debug level.
func NewNoopPublisher(log *zap.Logger) port.EventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &noopPublisher{log: log}
}

func (p *noopPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.log.Debug("event", zap.String("type", ev.Type), zap.String("document_id", ev.DocumentID.String()))
	return nil
}

func (p *noopPublisher) Close() error { return nil }
