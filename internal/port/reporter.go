package port

import (
	"context"

	"taxdocs/internal/domain"
)

// ErrorReporter is notified about documents that failed validation.
type ErrorReporter interface {
	ReportInvalid(ctx context.Context, rec *domain.DocumentRecord, result *domain.ValidationResult) error
}
