package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stephanofer/atlas/internal/core/domain"
)

var documentTestColumns = []string{
	"id", "company_id", "title", "description", "file_name", "file_path", "file_size", "file_type", "mime_type",
	"current_area_id", "current_user_id", "origin_area_id", "created_by", "status", "priority", "version",
	"created_at", "updated_at",
}

func documentRow(version int64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(documentTestColumns).AddRow(
		"doc-1", "comp-1", "Informe", nil, "informe.pdf", "comp-1/documents/doc-1.pdf", int64(2048), "pdf", "application/pdf",
		"area-legal", "user-2", "area-origin", "user-1", "derived", "normal", version,
		now, now,
	)
}

func newDocRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestDocumentGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, company_id, title").
		WithArgs("comp-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "comp-1", "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentCreateWritesDocumentAndEntryInOneTx(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO document_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc := &domain.Document{ID: "doc-1", CompanyID: "comp-1", Title: "Informe", Version: 1}
	entry := &domain.HistoryEntry{ID: "h-1", DocumentID: "doc-1", CompanyID: "comp-1", Action: domain.ActionCreated}
	if err := repo.Create(context.Background(), doc, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentCreateRollsBackWhenEntryInsertFails(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO document_history").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	doc := &domain.Document{ID: "doc-1", CompanyID: "comp-1"}
	entry := &domain.HistoryEntry{ID: "h-1", DocumentID: "doc-1"}
	if err := repo.Create(context.Background(), doc, entry); err == nil {
		t.Fatalf("expected error when the ledger insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyDerivationSuccess(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE documents").
		WithArgs("comp-1", "doc-1", int64(3), "area-legal", "user-2", "derived", sqlmock.AnyArg()).
		WillReturnRows(documentRow(4))
	mock.ExpectExec("INSERT INTO document_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	doc, err := repo.ApplyDerivation(context.Background(), domain.DerivationMutation{
		CompanyID:       "comp-1",
		DocumentID:      "doc-1",
		ExpectedVersion: 3,
		TargetAreaID:    "area-legal",
		TargetUserID:    "user-2",
		NewStatus:       domain.StatusDerived,
		Entry:           &domain.HistoryEntry{ID: "h-1", DocumentID: "doc-1", Action: domain.ActionDerived},
	})
	if err != nil {
		t.Fatalf("ApplyDerivation() error = %v", err)
	}
	if doc.Version != 4 {
		t.Fatalf("expected returned version 4, got %d", doc.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyDerivationVersionMissIsConflict(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE documents").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT version FROM documents").
		WithArgs("comp-1", "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(7)))
	mock.ExpectRollback()

	_, err := repo.ApplyDerivation(context.Background(), domain.DerivationMutation{
		CompanyID:       "comp-1",
		DocumentID:      "doc-1",
		ExpectedVersion: 3,
		Entry:           &domain.HistoryEntry{ID: "h-1"},
	})
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApplyDerivationMissingDocumentIsNotFound(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE documents").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT version FROM documents").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.ApplyDerivation(context.Background(), domain.DerivationMutation{
		CompanyID:       "comp-1",
		DocumentID:      "ghost",
		ExpectedVersion: 1,
		Entry:           &domain.HistoryEntry{ID: "h-1"},
	})
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
