package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/stephanofer/atlas/internal/core/domain"
)

// CredentialStore keeps sign-in secrets in their own table, apart from
// the user profile rows. Passwords are bcrypt-hashed; the plaintext
// never leaves this package after Create/Verify return.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Create(ctx context.Context, userID, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO auth_credentials (user_id, email, password_hash, created_at)
VALUES ($1,$2,$3,$4)
`, userID, email, string(hash), time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.WrapError(domain.ErrConflict, "create credential", fmt.Errorf("email %s already registered", email))
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM auth_credentials WHERE user_id = $1
`, userID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete credential", fmt.Errorf("user %s", userID))
	}
	return nil
}

func (s *CredentialStore) Verify(ctx context.Context, email, password string) (string, error) {
	var userID, hash string
	err := s.db.QueryRowContext(ctx, `
SELECT user_id, password_hash FROM auth_credentials WHERE email = $1
`, email).Scan(&userID, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.WrapError(domain.ErrUnauthorized, "verify credential", errors.New("unknown email"))
		}
		return "", fmt.Errorf("fetch credential: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify credential", errors.New("password mismatch"))
	}
	return userID, nil
}
