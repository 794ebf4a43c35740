package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, company_id, email, full_name, role, status, area_id, position, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		user.ID, user.CompanyID, user.Email, user.FullName, string(user.Role), string(user.Status),
		nullStr(user.AreaID), nullStr(user.Position), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return conflictOr(err, "insert user")
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, companyID, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE company_id = $1 AND id = $2
`, companyID, userID)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = $1
`, email)
	return scanUser(row)
}

func (r *UserRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE company_id = $1
ORDER BY full_name
`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepository) ListByArea(ctx context.Context, companyID, areaID string, statuses []domain.UserStatus) ([]domain.User, error) {
	if len(statuses) == 0 {
		statuses = []domain.UserStatus{domain.UserActive, domain.UserInactive, domain.UserPending}
	}
	placeholders := make([]string, len(statuses))
	args := []any{companyID, areaID}
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, string(s))
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE company_id = $1 AND area_id = $2 AND status IN (`+strings.Join(placeholders, ",")+`)
ORDER BY full_name
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list area users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// UpdateRole changes a user's role. When the change would demote the
// last active admin of the company, it fails with domain.ErrPermission
// and writes nothing. The floor check and the update share one
// transaction, with the target row locked.
func (r *UserRepository) UpdateRole(ctx context.Context, companyID, userID string, role domain.Role) error {
	return r.guardedUpdate(ctx, companyID, userID,
		func(current *domain.User) bool {
			return current.Role == domain.RoleAdmin && current.Status == domain.UserActive && role != domain.RoleAdmin
		},
		`UPDATE users SET role = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`,
		string(role),
	)
}

// UpdateStatus changes a user's status under the same admin-floor guard
// as UpdateRole.
func (r *UserRepository) UpdateStatus(ctx context.Context, companyID, userID string, status domain.UserStatus) error {
	return r.guardedUpdate(ctx, companyID, userID,
		func(current *domain.User) bool {
			return current.Role == domain.RoleAdmin && current.Status == domain.UserActive && status != domain.UserActive
		},
		`UPDATE users SET status = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`,
		string(status),
	)
}

func (r *UserRepository) guardedUpdate(
	ctx context.Context,
	companyID, userID string,
	demotesActiveAdmin func(*domain.User) bool,
	updateQuery string,
	newValue string,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin user update tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE company_id = $1 AND id = $2
FOR UPDATE
`, companyID, userID)
	current, err := scanUser(row)
	if err != nil {
		return err
	}

	if demotesActiveAdmin(current) {
		var remaining int
		err := tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM users
WHERE company_id = $1 AND role = 'admin' AND status = 'active' AND id <> $2
`, companyID, userID).Scan(&remaining)
		if err != nil {
			return fmt.Errorf("count remaining admins: %w", err)
		}
		if remaining == 0 {
			return domain.WrapError(domain.ErrPermission, "update user",
				errors.New("at least one active admin must remain"))
		}
	}

	if _, err := tx.ExecContext(ctx, updateQuery, companyID, userID, newValue, time.Now().UTC()); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user update tx: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateArea(ctx context.Context, companyID, userID, areaID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET area_id = $3, updated_at = $4
WHERE company_id = $1 AND id = $2
`, companyID, userID, nullStr(areaID), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update user area: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WrapError(domain.ErrNotFound, "update user area", fmt.Errorf("user %s", userID))
	}
	return nil
}

func (r *UserRepository) CountActive(ctx context.Context, companyID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM users
WHERE company_id = $1 AND status = 'active'
`, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role, status string
	var areaID, position sql.NullString
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.Email, &u.FullName, &role, &status,
		&areaID, &position, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch user", err)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.AreaID = fromNull(areaID)
	u.Position = fromNull(position)
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
