package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

const uniqueViolation = "23505"

const documentColumns = `id, category, mime_type, size, fields, clarity_score,
	status, check_history, created_at, updated_at`

// documentRow mirrors the documents table; JSONB columns are kept raw.
type documentRow struct {
	ID           uuid.UUID       `db:"id"`
	Category     string          `db:"category"`
	MimeType     string          `db:"mime_type"`
	Size         int64           `db:"size"`
	Fields       []byte          `db:"fields"`
	ClarityScore sql.NullFloat64 `db:"clarity_score"`
	Status       string          `db:"status"`
	CheckHistory []byte          `db:"check_history"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (row *documentRow) toDomain() (*domain.DocumentRecord, error) {
	rec := &domain.DocumentRecord{
		ID:        row.ID,
		Category:  row.Category,
		MimeType:  row.MimeType,
		Size:      row.Size,
		Status:    domain.LifecycleState(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.ClarityScore.Valid {
		c := row.ClarityScore.Float64
		rec.ClarityScore = &c
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("decoding fields of %s: %w", row.ID, err)
		}
	}
	if len(row.CheckHistory) > 0 {
		if err := json.Unmarshal(row.CheckHistory, &rec.CheckHistory); err != nil {
			return nil, fmt.Errorf("decoding check history of %s: %w", row.ID, err)
		}
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	if rec.CheckHistory == nil {
		rec.CheckHistory = map[string]domain.CheckEntry{}
	}
	return rec, nil
}

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, rec *domain.DocumentRecord) error {
	fields, err := marshalObject(rec.Fields)
	if err != nil {
		return fmt.Errorf("documentRepo.Create fields: %w", err)
	}
	history, err := marshalObject(rec.CheckHistory)
	if err != nil {
		return fmt.Errorf("documentRepo.Create check_history: %w", err)
	}
	var clarity sql.NullFloat64
	if rec.ClarityScore != nil {
		clarity = sql.NullFloat64{Float64: *rec.ClarityScore, Valid: true}
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Category, rec.MimeType, rec.Size, fields, clarity,
		string(rec.Status), history, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDocumentAlreadyExists
		}
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	var row documentRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	rec, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return rec, nil
}

func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.DocumentRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var rows []documentRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+documentColumns+` FROM documents
		 ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}

	docs := make([]domain.DocumentRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
		}
		docs = append(docs, *rec)
	}
	return docs, total, nil
}

// CompareAndSwapStatus updates the status only while the stored status still
// equals expected, merging the check entries into check_history.
func (r *documentRepo) CompareAndSwapStatus(
	ctx context.Context,
	rec *domain.DocumentRecord,
	expected, next domain.LifecycleState,
	checks map[string]domain.CheckEntry,
	at time.Time,
) error {
	patch, err := marshalObject(checks)
	if err != nil {
		return fmt.Errorf("documentRepo.CompareAndSwapStatus: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE documents
		 SET status = $1, check_history = check_history || $2::jsonb, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		string(next), patch, at, rec.ID, string(expected))
	if err != nil {
		return fmt.Errorf("documentRepo.CompareAndSwapStatus: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo.CompareAndSwapStatus rows: %w", err)
	}
	if affected == 0 {
		var actual string
		err := r.db.GetContext(ctx, &actual, "SELECT status FROM documents WHERE id = $1", rec.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrDocumentNotFound
			}
			return fmt.Errorf("documentRepo.CompareAndSwapStatus lookup: %w", err)
		}
		return &domain.ConflictError{
			DocumentID: rec.ID.String(),
			Expected:   expected,
			Actual:     domain.LifecycleState(actual),
		}
	}

	rec.ApplyTransition(next, checks, at)
	return nil
}

func (r *documentRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// marshalObject encodes a map as a JSON object, never as null.
func marshalObject[V any](m map[string]V) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
