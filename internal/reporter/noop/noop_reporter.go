// Package noop provides an ErrorReporter that only logs.
package noop

import (
	"context"

	"go.uber.org/zap"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

type noopReporter struct {
	log *zap.Logger
}

// NewNoopReporter creates an ErrorReporter that logs invalid documents at info level.
func NewNoopReporter(log *zap.Logger) port.ErrorReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &noopReporter{log: log}
}

func (r *noopReporter) ReportInvalid(_ context.Context, rec *domain.DocumentRecord, res *domain.ValidationResult) error {
	r.log.Info("document failed validation",
		zap.String("document_id", rec.ID.String()),
		zap.String("category", res.CategoryID),
		zap.Float64("quality_score", res.QualityScore),
		zap.Strings("errors", res.Errors),
	)
	return nil
}
