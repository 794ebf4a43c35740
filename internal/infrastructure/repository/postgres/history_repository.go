package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

// HistoryRepository is the append-only ledger. It exposes no update or
// delete: entries are write-once, read-many.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	_, err := r.db.ExecContext(ctx, insertHistoryQuery,
		entry.ID, entry.DocumentID, entry.CompanyID, entry.UserID, string(entry.Action),
		nullStr(entry.FromAreaID), nullStr(entry.ToAreaID), nullStr(entry.FromUserID), nullStr(entry.ToUserID),
		nullStr(entry.Comment), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListByDocument(ctx context.Context, companyID, documentID string, order domain.HistoryOrder) ([]domain.HistoryEntry, error) {
	direction := "DESC"
	if order == domain.OldestFirst {
		direction = "ASC"
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, company_id, user_id, action, from_area_id, to_area_id, from_user_id, to_user_id, comment, created_at
FROM document_history
WHERE company_id = $1 AND document_id = $2
ORDER BY created_at `+direction, companyID, documentID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

func (r *HistoryRepository) CountDerivedSince(ctx context.Context, companyID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM document_history
WHERE company_id = $1 AND action = 'derived' AND created_at >= $2
`, companyID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count derived entries: %w", err)
	}
	return count, nil
}

// ListRecentActivity joins display names for the dashboard feed. The
// joins are read-time conveniences; the ledger rows themselves stay
// denormalized snapshots.
func (r *HistoryRepository) ListRecentActivity(ctx context.Context, companyID string, limit int) ([]domain.ActivityEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT h.id, h.document_id, h.company_id, h.user_id, h.action,
	h.from_area_id, h.to_area_id, h.from_user_id, h.to_user_id, h.comment, h.created_at,
	COALESCE(d.title, ''), COALESCE(u.full_name, ''), COALESCE(a.name, '')
FROM document_history h
LEFT JOIN documents d ON d.id = h.document_id
LEFT JOIN users u ON u.id = h.user_id
LEFT JOIN areas a ON a.id = h.to_area_id
WHERE h.company_id = $1
ORDER BY h.created_at DESC
LIMIT $2
`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var e domain.ActivityEntry
		var action string
		var fromAreaID, toAreaID, fromUserID, toUserID, comment sql.NullString
		err := rows.Scan(
			&e.ID, &e.DocumentID, &e.CompanyID, &e.UserID, &action,
			&fromAreaID, &toAreaID, &fromUserID, &toUserID, &comment, &e.CreatedAt,
			&e.DocumentTitle, &e.ActorName, &e.ToAreaName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		e.Action = domain.HistoryAction(action)
		e.FromAreaID = fromNull(fromAreaID)
		e.ToAreaID = fromNull(toAreaID)
		e.FromUserID = fromNull(fromUserID)
		e.ToUserID = fromNull(toUserID)
		e.Comment = fromNull(comment)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return entries, nil
}

func scanHistoryEntry(row rowScanner) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var action string
	var fromAreaID, toAreaID, fromUserID, toUserID, comment sql.NullString
	err := row.Scan(
		&e.ID, &e.DocumentID, &e.CompanyID, &e.UserID, &action,
		&fromAreaID, &toAreaID, &fromUserID, &toUserID, &comment, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan history entry: %w", err)
	}
	e.Action = domain.HistoryAction(action)
	e.FromAreaID = fromNull(fromAreaID)
	e.ToAreaID = fromNull(toAreaID)
	e.FromUserID = fromNull(fromUserID)
	e.ToUserID = fromNull(toUserID)
	e.Comment = fromNull(comment)
	return &e, nil
}
