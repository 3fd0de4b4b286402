// Package memory provides an in-process DocumentRepository for tests and single-node use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

type documentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*domain.DocumentRecord
}

// NewDocumentRepo creates an empty in-memory DocumentRepository.
func NewDocumentRepo() port.DocumentRepository {
	return &documentRepo{docs: make(map[uuid.UUID]*domain.DocumentRecord)}
}

func (r *documentRepo) Create(_ context.Context, rec *domain.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[rec.ID]; ok {
		return domain.ErrDocumentAlreadyExists
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.docs[rec.ID] = rec.Clone()
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return rec.Clone(), nil
}

func (r *documentRepo) List(_ context.Context, offset, limit int) ([]domain.DocumentRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.DocumentRecord, 0, len(r.docs))
	for _, rec := range r.docs {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	total := len(all)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]domain.DocumentRecord, 0, end-offset)
	for _, rec := range all[offset:end] {
		out = append(out, *rec.Clone())
	}
	return out, total, nil
}

func (r *documentRepo) CompareAndSwapStatus(
	_ context.Context,
	rec *domain.DocumentRecord,
	expected, next domain.LifecycleState,
	checks map[string]domain.CheckEntry,
	at time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.docs[rec.ID]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if stored.Status != expected {
		return &domain.ConflictError{DocumentID: rec.ID.String(), Expected: expected, Actual: stored.Status}
	}
	stored.ApplyTransition(next, checks, at)
	rec.ApplyTransition(next, checks, at)
	return nil
}

func (r *documentRepo) Ping(context.Context) error { return nil }
