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

// UserAdminUseCase covers admin-side user management. Role and status
// writes go through repository methods that check the active-admin
// floor in the same transaction, so "at least one active admin per
// company" holds even under concurrent edits.
type UserAdminUseCase struct {
	users       ports.UserRepository
	areas       ports.AreaRepository
	credentials ports.CredentialStore
	logger      *slog.Logger
}

func NewUserAdminUseCase(users ports.UserRepository, areas ports.AreaRepository, credentials ports.CredentialStore, logger *slog.Logger) *UserAdminUseCase {
	return &UserAdminUseCase{users: users, areas: areas, credentials: credentials, logger: logger}
}

func (uc *UserAdminUseCase) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if err := uc.requireRole(ctx, input.CompanyID, input.ActorID, domain.RoleAdmin, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	if err := domain.ValidateFullName(input.FullName); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if _, err := domain.ParseRole(string(input.Role)); err != nil {
		return nil, err
	}
	if input.AreaID != "" {
		if _, err := uc.areas.GetByID(ctx, input.CompanyID, input.AreaID); err != nil {
			return nil, fmt.Errorf("resolve area: %w", err)
		}
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		CompanyID: input.CompanyID,
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      input.Role,
		Status:    domain.UserPending,
		AreaID:    input.AreaID,
		Position:  input.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.credentials.Create(ctx, user.ID, input.Email, input.Password); err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	if err := uc.users.Create(ctx, user); err != nil {
		// Without this delete the unique credential email stays claimed
		// by a user row that never existed.
		if delErr := uc.credentials.Delete(ctx, user.ID); delErr != nil {
			uc.logger.Error("credential rollback failed", "user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (uc *UserAdminUseCase) ChangeRole(ctx context.Context, companyID, actorID, userID string, role domain.Role) error {
	if err := uc.requireRole(ctx, companyID, actorID, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}
	if err := uc.users.UpdateRole(ctx, companyID, userID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (uc *UserAdminUseCase) ChangeStatus(ctx context.Context, companyID, actorID, userID string, status domain.UserStatus) error {
	if err := uc.requireRole(ctx, companyID, actorID, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := domain.ParseUserStatus(string(status)); err != nil {
		return err
	}
	if err := uc.users.UpdateStatus(ctx, companyID, userID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (uc *UserAdminUseCase) AssignArea(ctx context.Context, companyID, actorID, userID, areaID string) error {
	if err := uc.requireRole(ctx, companyID, actorID, domain.RoleAdmin); err != nil {
		return err
	}
	if areaID != "" {
		if _, err := uc.areas.GetByID(ctx, companyID, areaID); err != nil {
			return fmt.Errorf("resolve area: %w", err)
		}
	}
	if err := uc.users.UpdateArea(ctx, companyID, userID, areaID); err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	return nil
}

func (uc *UserAdminUseCase) ListUsers(ctx context.Context, companyID string) ([]domain.User, error) {
	users, err := uc.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListAreaUsers returns the derivation-target candidates of an area:
// active and pending users, inactive excluded.
func (uc *UserAdminUseCase) ListAreaUsers(ctx context.Context, companyID, areaID string) ([]domain.User, error) {
	users, err := uc.users.ListByArea(ctx, companyID, areaID, []domain.UserStatus{domain.UserActive, domain.UserPending})
	if err != nil {
		return nil, fmt.Errorf("list area users: %w", err)
	}
	return users, nil
}

func (uc *UserAdminUseCase) requireRole(ctx context.Context, companyID, actorID string, allowed ...domain.Role) error {
	actor, err := uc.users.GetByID(ctx, companyID, actorID)
	if err != nil {
		return fmt.Errorf("fetch actor: %w", err)
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return domain.WrapError(domain.ErrPermission, "manage users", errors.New("actor role does not allow this operation"))
}
