package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

// maxCASAttempts bounds retries when an unrelated write touches the key
// between WATCH and EXEC without changing its status.
const maxCASAttempts = 5

type documentRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewDocumentRepo creates a Redis-backed DocumentRepository. Records are stored
// as JSON under "<prefix>doc:<id>" and indexed by creation time in "<prefix>docs".
func NewDocumentRepo(client redis.UniversalClient, prefix string) port.DocumentRepository {
	return &documentRepo{client: client, prefix: prefix}
}

func (r *documentRepo) key(id uuid.UUID) string {
	return r.prefix + "doc:" + id.String()
}

func (r *documentRepo) indexKey() string {
	return r.prefix + "docs"
}

func (r *documentRepo) Create(ctx context.Context, rec *domain.DocumentRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("documentRepo.Create encode: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.key(rec.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	if !ok {
		return domain.ErrDocumentAlreadyExists
	}
	err = r.client.ZAdd(ctx, r.indexKey(), redis.Z{
		Score:  float64(now.UnixNano()),
		Member: rec.ID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("documentRepo.Create index: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	rec, err := r.load(ctx, r.client, id)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return rec, nil
}

func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error) {
	total, err := r.client.ZCard(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), int64(offset), stop).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	if len(ids) == 0 {
		return []domain.DocumentRecord{}, int(total), nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.prefix + "doc:" + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List fetch: %w", err)
	}

	docs := make([]domain.DocumentRecord, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := decode([]byte(s))
		if err != nil {
			return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
		}
		docs = append(docs, *rec)
	}
	return docs, int(total), nil
}

// CompareAndSwapStatus writes the transition inside WATCH/MULTI so that a
// concurrent status change aborts the transaction.
func (r *documentRepo) CompareAndSwapStatus(
	ctx context.Context,
	rec *domain.DocumentRecord,
	expected, next domain.LifecycleState,
	checks map[string]domain.CheckEntry,
	at time.Time,
) error {
	key := r.key(rec.ID)
	for range maxCASAttempts {
		var conflict error
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			stored, err := r.load(ctx, tx, rec.ID)
			if err != nil {
				return err
			}
			if stored.Status != expected {
				conflict = &domain.ConflictError{DocumentID: rec.ID.String(), Expected: expected, Actual: stored.Status}
				return nil
			}
			stored.ApplyTransition(next, checks, at)
			payload, err := json.Marshal(stored)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, redis.KeepTTL)
				return nil
			})
			return err
		}, key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, domain.ErrDocumentNotFound):
			return err
		case err != nil:
			return fmt.Errorf("documentRepo.CompareAndSwapStatus: %w", err)
		case conflict != nil:
			return conflict
		}
		rec.ApplyTransition(next, checks, at)
		return nil
	}
	return &domain.ConflictError{DocumentID: rec.ID.String(), Expected: expected}
}

func (r *documentRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *documentRepo) load(ctx context.Context, c redis.Cmdable, id uuid.UUID) (*domain.DocumentRecord, error) {
	raw, err := c.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw []byte) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	if rec.CheckHistory == nil {
		rec.CheckHistory = map[string]domain.CheckEntry{}
	}
	return &rec, nil
}
