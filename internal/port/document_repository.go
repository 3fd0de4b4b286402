package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taxdocs/internal/domain"
)

// StatusCommitter commits a lifecycle status change under an optimistic precondition.
type StatusCommitter interface {
	// CompareAndSwapStatus moves the stored record from expected to next and merges
	// checks into its check history, then applies the same change to rec. If the
	// stored status no longer equals expected it returns a *domain.ConflictError and
	// changes nothing.
	CompareAndSwapStatus(ctx context.Context, rec *domain.DocumentRecord, expected, next domain.LifecycleState, checks map[string]domain.CheckEntry, at time.Time) error
}

// DocumentRepository defines the contract for document record persistence.
type DocumentRepository interface {
	StatusCommitter
	Create(ctx context.Context, rec *domain.DocumentRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error)
	Ping(ctx context.Context) error
}
