package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stephanofer/atlas/internal/core/domain"
)

type AreaRepository struct {
	db *sql.DB
}

func NewAreaRepository(db *sql.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) Create(ctx context.Context, area *domain.Area) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO areas (id, company_id, name, description, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, area.ID, area.CompanyID, area.Name, nullStr(area.Description), area.CreatedAt, area.UpdatedAt)
	if err != nil {
		return conflictOr(err, "insert area")
	}
	return nil
}

func (r *AreaRepository) Update(ctx context.Context, area *domain.Area) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE areas SET name = $3, description = $4, updated_at = $5
WHERE company_id = $1 AND id = $2
`, area.CompanyID, area.ID, area.Name, nullStr(area.Description), area.UpdatedAt)
	if err != nil {
		return conflictOr(err, "update area")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WrapError(domain.ErrNotFound, "update area", fmt.Errorf("area %s", area.ID))
	}
	return nil
}

func (r *AreaRepository) GetByID(ctx context.Context, companyID, areaID string) (*domain.Area, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, company_id, name, description, created_at, updated_at
FROM areas
WHERE company_id = $1 AND id = $2
`, companyID, areaID)

	var a domain.Area
	var description sql.NullString
	err := row.Scan(&a.ID, &a.CompanyID, &a.Name, &description, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch area", err)
		}
		return nil, fmt.Errorf("scan area: %w", err)
	}
	a.Description = fromNull(description)
	return &a, nil
}

func (r *AreaRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.AreaSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT a.id, a.company_id, a.name, a.description, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM users u WHERE u.area_id = a.id) AS user_count,
	(SELECT COUNT(*) FROM documents d WHERE d.current_area_id = a.id) AS document_count
FROM areas a
WHERE a.company_id = $1
ORDER BY a.name
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	areas := make([]domain.AreaSummary, 0)
	for rows.Next() {
		var s domain.AreaSummary
		var description sql.NullString
		err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &description, &s.CreatedAt, &s.UpdatedAt,
			&s.UserCount, &s.DocumentCount)
		if err != nil {
			return nil, fmt.Errorf("scan area summary: %w", err)
		}
		s.Description = fromNull(description)
		areas = append(areas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate areas: %w", err)
	}
	return areas, nil
}

// Delete removes the area unless any document has it as current
// location. The count and the delete run in one transaction so a
// concurrent derivation into the area cannot slip between them.
func (r *AreaRepository) Delete(ctx context.Context, companyID, areaID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin area delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var documents int
	err = tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM documents
WHERE company_id = $1 AND current_area_id = $2
`, companyID, areaID).Scan(&documents)
	if err != nil {
		return fmt.Errorf("count area documents: %w", err)
	}
	if documents > 0 {
		return domain.WrapError(domain.ErrConflict, "delete area",
			fmt.Errorf("area has %d documents assigned", documents))
	}

	res, err := tx.ExecContext(ctx, `
DELETE FROM areas WHERE company_id = $1 AND id = $2
`, companyID, areaID)
	if err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete area", fmt.Errorf("area %s", areaID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit area delete tx: %w", err)
	}
	return nil
}
