package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stephanofer/atlas/internal/core/domain"
)

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO companies (id, name, slug, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
`, company.ID, company.Name, company.Slug, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return conflictOr(err, "insert company")
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	return r.get(ctx, `WHERE slug = $1`, slug)
}

func (r *CompanyRepository) get(ctx context.Context, where string, arg any) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, slug, created_at, updated_at
FROM companies
`+where, arg)

	var c domain.Company
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch company", err)
		}
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &c, nil
}

func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return nil
}
