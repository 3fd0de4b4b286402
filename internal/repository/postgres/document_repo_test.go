package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
	"taxdocs/internal/repository/postgres"
)

var rowColumns = []string{
	"id", "category", "mime_type", "size", "fields", "clarity_score",
	"status", "check_history", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (port.DocumentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewDocumentRepo(sqlx.NewDb(db, "pgx")), mock
}

func TestDocumentRepo_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rec := &domain.DocumentRecord{
		ID:       uuid.New(),
		Category: "W2",
		MimeType: "application/pdf",
		Size:     2048,
		Fields:   map[string]any{"wages": 52000},
		Status:   domain.StateUploaded,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(rec.ID, "W2", "application/pdf", int64(2048), []byte(`{"wages":52000}`), nil,
			"UPLOADED", []byte("{}"), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), rec))
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_CreateDuplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domain.DocumentRecord{ID: uuid.New(), Status: domain.StateUploaded})
	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.New()
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(rowColumns).AddRow(
		id.String(), "W2", "application/pdf", int64(2048),
		[]byte(`{"employee_ssn":"123-45-6789","wages":52000}`), 0.8,
		"PROCESSING", []byte(`{"virus_scan":{"passed":true,"timestamp":"2026-01-10T09:05:00Z"}}`),
		created, created.Add(5*time.Minute),
	)
	mock.ExpectQuery(`FROM documents WHERE id = \$1`).WithArgs(id).WillReturnRows(rows)

	rec, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, domain.StateProcessing, rec.Status)
	assert.Equal(t, "123-45-6789", rec.Fields["employee_ssn"])
	assert.Equal(t, 52000.0, rec.Fields["wages"])
	require.NotNil(t, rec.ClarityScore)
	assert.Equal(t, 0.8, *rec.ClarityScore)
	require.Contains(t, rec.CheckHistory, "virus_scan")
	assert.True(t, rec.CheckHistory["virus_scan"].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByIDNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM documents WHERE id = \$1`).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_List(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`ORDER BY created_at DESC, id LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(uuid.NewString(), "W2", "application/pdf", int64(1), nil, nil, "UPLOADED", nil, now, now).
			AddRow(uuid.NewString(), "1099_NEC", "image/png", int64(2), []byte(`{}`), nil, "VALIDATED", []byte(`{}`), now, now))

	docs, total, err := repo.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, docs, 2)
	assert.NotNil(t, docs[0].Fields)
	assert.NotNil(t, docs[0].CheckHistory)
	assert.Equal(t, domain.StateValidated, docs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_CompareAndSwapStatus(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rec := &domain.DocumentRecord{ID: uuid.New(), Status: domain.StateUploaded}
	checks := map[string]domain.CheckEntry{
		"virus_scan":   {Passed: true, Timestamp: at},
		"format_check": {Passed: true, Timestamp: at},
	}

	mock.ExpectExec("UPDATE documents").
		WithArgs("PROCESSING", sqlmock.AnyArg(), at, rec.ID, "UPLOADED").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CompareAndSwapStatus(context.Background(), rec, domain.StateUploaded, domain.StateProcessing, checks, at)
	require.NoError(t, err)
	assert.Equal(t, domain.StateProcessing, rec.Status)
	assert.Len(t, rec.CheckHistory, 2)
	assert.Equal(t, at, rec.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_CompareAndSwapStatusConflict(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rec := &domain.DocumentRecord{ID: uuid.New(), Status: domain.StateUploaded}

	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM documents WHERE id").
		WithArgs(rec.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PROCESSING"))

	err := repo.CompareAndSwapStatus(context.Background(), rec, domain.StateUploaded, domain.StateProcessing, nil, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, domain.StateProcessing, conflict.Actual)
	assert.Equal(t, domain.StateUploaded, rec.Status, "record must not change on conflict")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_CompareAndSwapStatusNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	rec := &domain.DocumentRecord{ID: uuid.New(), Status: domain.StateUploaded}

	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM documents WHERE id").WillReturnError(sql.ErrNoRows)

	err := repo.CompareAndSwapStatus(context.Background(), rec, domain.StateUploaded, domain.StateProcessing, nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
