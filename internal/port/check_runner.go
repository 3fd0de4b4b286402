package port

import (
	"context"

	"taxdocs/internal/domain"
)

// CheckRunner executes one named lifecycle check against a document.
// A returned error counts as a failed check.
type CheckRunner interface {
	RunCheck(ctx context.Context, name string, rec *domain.DocumentRecord) (domain.CheckOutcome, error)
}
