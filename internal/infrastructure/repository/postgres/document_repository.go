package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, company_id, title, description, file_name, file_path, file_size, file_type, mime_type,
	current_area_id, current_user_id, origin_area_id, created_by, status, priority, version, created_at, updated_at`

const insertHistoryQuery = `
INSERT INTO document_history (
	id, document_id, company_id, user_id, action, from_area_id, to_area_id, from_user_id, to_user_id, comment, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`

// Create inserts the document together with its `created` ledger entry.
// Both land or neither does: a document without its first entry would
// be invisible to the audit trail.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document, entry *domain.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`,
		doc.ID, doc.CompanyID, doc.Title, nullStr(doc.Description), doc.FileName, doc.FilePath,
		doc.FileSize, doc.FileType, doc.MimeType,
		nullStr(doc.CurrentAreaID), nullStr(doc.CurrentUserID), nullStr(doc.OriginAreaID),
		doc.CreatedBy, string(doc.Status), string(doc.Priority), doc.Version, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	if err := insertHistoryTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, companyID, documentID string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE company_id = $1 AND id = $2
`, companyID, documentID)
	return scanDocument(row)
}

// GetDetail joins the referenced area/user display names in one read.
func (r *DocumentRepository) GetDetail(ctx context.Context, companyID, documentID string) (*domain.DocumentDetail, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT d.id, d.company_id, d.title, d.description, d.file_name, d.file_path, d.file_size, d.file_type, d.mime_type,
	d.current_area_id, d.current_user_id, d.origin_area_id, d.created_by, d.status, d.priority, d.version,
	d.created_at, d.updated_at,
	ca.name, cu.full_name, oa.name, cr.full_name
FROM documents d
LEFT JOIN areas ca ON ca.id = d.current_area_id
LEFT JOIN users cu ON cu.id = d.current_user_id
LEFT JOIN areas oa ON oa.id = d.origin_area_id
LEFT JOIN users cr ON cr.id = d.created_by
WHERE d.company_id = $1 AND d.id = $2
`, companyID, documentID)

	var detail domain.DocumentDetail
	var description, currentAreaID, currentUserID, originAreaID sql.NullString
	var status, priority string
	var currentAreaName, currentUserName, originAreaName, creatorName sql.NullString
	err := row.Scan(
		&detail.ID, &detail.CompanyID, &detail.Title, &description, &detail.FileName, &detail.FilePath,
		&detail.FileSize, &detail.FileType, &detail.MimeType,
		&currentAreaID, &currentUserID, &originAreaID, &detail.CreatedBy, &status, &priority, &detail.Version,
		&detail.CreatedAt, &detail.UpdatedAt,
		&currentAreaName, &currentUserName, &originAreaName, &creatorName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch document", err)
		}
		return nil, fmt.Errorf("scan document detail: %w", err)
	}
	detail.Description = fromNull(description)
	detail.CurrentAreaID = fromNull(currentAreaID)
	detail.CurrentUserID = fromNull(currentUserID)
	detail.OriginAreaID = fromNull(originAreaID)
	detail.Status = domain.DocumentStatus(status)
	detail.Priority = domain.Priority(priority)
	detail.CurrentAreaName = fromNull(currentAreaName)
	detail.CurrentUserName = fromNull(currentUserName)
	detail.OriginAreaName = fromNull(originAreaName)
	detail.CreatorName = fromNull(creatorName)
	return &detail, nil
}

func (r *DocumentRepository) List(ctx context.Context, companyID string, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE company_id = $1`
	args := []any{companyID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.AreaID != "" {
		args = append(args, filter.AreaID)
		query += fmt.Sprintf(" AND current_area_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) CountByCompany(ctx context.Context, companyID string, status domain.DocumentStatus) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE company_id = $1`
	args := []any{companyID}
	if status != "" {
		args = append(args, string(status))
		query += " AND status = $2"
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// ApplyDerivation performs the must-both-succeed half of a derivation
// in one transaction: the guarded location update and the `derived`
// ledger entry. A version miss distinguishes "row moved on" (ErrConflict,
// caller retries with a fresh snapshot) from "row gone" (ErrNotFound).
func (r *DocumentRepository) ApplyDerivation(ctx context.Context, m domain.DerivationMutation) (*domain.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin derivation tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
UPDATE documents
SET current_area_id = $4, current_user_id = $5, status = $6, version = version + 1, updated_at = $7
WHERE company_id = $1 AND id = $2 AND version = $3
RETURNING `+documentColumns+`
`,
		m.CompanyID, m.DocumentID, m.ExpectedVersion,
		m.TargetAreaID, nullStr(m.TargetUserID), string(m.NewStatus), time.Now().UTC(),
	)
	doc, err := scanDocument(row)
	if err != nil {
		if !domain.IsKind(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("update document location: %w", err)
		}
		// No row matched: decide between a missing document and a
		// version conflict.
		var version int64
		probe := tx.QueryRowContext(ctx, `
SELECT version FROM documents WHERE company_id = $1 AND id = $2
`, m.CompanyID, m.DocumentID).Scan(&version)
		if errors.Is(probe, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "derive document", fmt.Errorf("document %s", m.DocumentID))
		}
		if probe != nil {
			return nil, fmt.Errorf("probe document version: %w", probe)
		}
		return nil, domain.WrapError(domain.ErrConflict, "derive document",
			fmt.Errorf("version moved from %d to %d", m.ExpectedVersion, version))
	}

	if err := insertHistoryTx(ctx, tx, m.Entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit derivation tx: %w", err)
	}
	return doc, nil
}

func insertHistoryTx(ctx context.Context, tx *sql.Tx, entry *domain.HistoryEntry) error {
	_, err := tx.ExecContext(ctx, insertHistoryQuery,
		entry.ID, entry.DocumentID, entry.CompanyID, entry.UserID, string(entry.Action),
		nullStr(entry.FromAreaID), nullStr(entry.ToAreaID), nullStr(entry.FromUserID), nullStr(entry.ToUserID),
		nullStr(entry.Comment), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var description, currentAreaID, currentUserID, originAreaID sql.NullString
	var status, priority string
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Title, &description, &d.FileName, &d.FilePath,
		&d.FileSize, &d.FileType, &d.MimeType,
		&currentAreaID, &currentUserID, &originAreaID, &d.CreatedBy, &status, &priority, &d.Version,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch document", err)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.Description = fromNull(description)
	d.CurrentAreaID = fromNull(currentAreaID)
	d.CurrentUserID = fromNull(currentUserID)
	d.OriginAreaID = fromNull(originAreaID)
	d.Status = domain.DocumentStatus(status)
	d.Priority = domain.Priority(priority)
	return &d, nil
}
