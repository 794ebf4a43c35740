package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO notifications (id, company_id, user_id, title, message, type, document_id, action_url, is_read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		n.ID, n.CompanyID, n.UserID, n.Title, n.Message, string(n.Type),
		nullStr(n.DocumentID), nullStr(n.ActionURL), n.IsRead, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, companyID, userID string, unreadOnly bool) ([]domain.Notification, error) {
	query := `
SELECT id, company_id, user_id, title, message, type, document_id, action_url, is_read, created_at
FROM notifications
WHERE company_id = $1 AND user_id = $2`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var kind string
		var documentID, actionURL sql.NullString
		err := rows.Scan(&n.ID, &n.CompanyID, &n.UserID, &n.Title, &n.Message, &kind,
			&documentID, &actionURL, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(kind)
		n.DocumentID = fromNull(documentID)
		n.ActionURL = fromNull(actionURL)
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return list, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, companyID, userID, notificationID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE notifications SET is_read = TRUE
WHERE company_id = $1 AND user_id = $2 AND id = $3
`, companyID, userID, notificationID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WrapError(domain.ErrNotFound, "mark notification read", fmt.Errorf("notification %s", notificationID))
	}
	return nil
}
