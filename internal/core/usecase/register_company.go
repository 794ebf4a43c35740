package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// RegisterUseCase provisions a tenant: company row, credential, first
// admin. The slug carries a unique constraint at the store, so a
// collision surfaces as domain.ErrConflict instead of silently creating
// a twin tenant. A credential failure rolls the company back.
type RegisterUseCase struct {
	companies   ports.CompanyRepository
	users       ports.UserRepository
	credentials ports.CredentialStore
	logger      *slog.Logger
}

func NewRegisterUseCase(
	companies ports.CompanyRepository,
	users ports.UserRepository,
	credentials ports.CredentialStore,
	logger *slog.Logger,
) *RegisterUseCase {
	return &RegisterUseCase{
		companies:   companies,
		users:       users,
		credentials: credentials,
		logger:      logger,
	}
}

func (uc *RegisterUseCase) Register(ctx context.Context, input ports.RegisterCompanyInput) (*domain.Company, *domain.User, error) {
	if err := domain.ValidateCompanyName(input.CompanyName); err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateFullName(input.FullName); err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateRegistrationPassword(input.Password); err != nil {
		return nil, nil, err
	}
	slug := domain.Slugify(input.CompanyName)
	if slug == "" {
		return nil, nil, domain.WrapError(domain.ErrValidation, "register company", errors.New("company name yields an empty slug"))
	}

	now := time.Now().UTC()
	company := &domain.Company{
		ID:        uuid.NewString(),
		Name:      input.CompanyName,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.companies.Create(ctx, company); err != nil {
		return nil, nil, fmt.Errorf("create company: %w", err)
	}

	admin := &domain.User{
		ID:        uuid.NewString(),
		CompanyID: company.ID,
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      domain.RoleAdmin,
		Status:    domain.UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.credentials.Create(ctx, admin.ID, input.Email, input.Password); err != nil {
		uc.rollbackCompany(ctx, company.ID)
		return nil, nil, fmt.Errorf("create credential: %w", err)
	}
	if err := uc.users.Create(ctx, admin); err != nil {
		// The credential row holds the globally unique email, so it must
		// go too or the address can never be registered again.
		uc.rollbackCredential(ctx, admin.ID)
		uc.rollbackCompany(ctx, company.ID)
		return nil, nil, fmt.Errorf("create admin user: %w", err)
	}
	return company, admin, nil
}

func (uc *RegisterUseCase) rollbackCompany(ctx context.Context, companyID string) {
	if err := uc.companies.Delete(ctx, companyID); err != nil {
		uc.logger.Error("company rollback failed", "company_id", companyID, "error", err)
	}
}

func (uc *RegisterUseCase) rollbackCredential(ctx context.Context, userID string) {
	if err := uc.credentials.Delete(ctx, userID); err != nil {
		uc.logger.Error("credential rollback failed", "user_id", userID, "error", err)
	}
}
