package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// AreaAdminUseCase covers admin-only area management. Deletion is
// guarded at the store: an area that is the current location of any
// document cannot be removed.
type AreaAdminUseCase struct {
	areas ports.AreaRepository
	users ports.UserRepository
}

func NewAreaAdminUseCase(areas ports.AreaRepository, users ports.UserRepository) *AreaAdminUseCase {
	return &AreaAdminUseCase{areas: areas, users: users}
}

func (uc *AreaAdminUseCase) CreateArea(ctx context.Context, companyID, actorID, name, description string) (*domain.Area, error) {
	if err := uc.requireAdmin(ctx, companyID, actorID); err != nil {
		return nil, err
	}
	if err := domain.ValidateArea(name, description); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	area := &domain.Area{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.areas.Create(ctx, area); err != nil {
		return nil, fmt.Errorf("create area: %w", err)
	}
	return area, nil
}

func (uc *AreaAdminUseCase) UpdateArea(ctx context.Context, companyID, actorID, areaID, name, description string) (*domain.Area, error) {
	if err := uc.requireAdmin(ctx, companyID, actorID); err != nil {
		return nil, err
	}
	if err := domain.ValidateArea(name, description); err != nil {
		return nil, err
	}
	area, err := uc.areas.GetByID(ctx, companyID, areaID)
	if err != nil {
		return nil, fmt.Errorf("fetch area: %w", err)
	}
	area.Name = name
	area.Description = description
	area.UpdatedAt = time.Now().UTC()
	if err := uc.areas.Update(ctx, area); err != nil {
		return nil, fmt.Errorf("update area: %w", err)
	}
	return area, nil
}

func (uc *AreaAdminUseCase) DeleteArea(ctx context.Context, companyID, actorID, areaID string) error {
	if err := uc.requireAdmin(ctx, companyID, actorID); err != nil {
		return err
	}
	if err := uc.areas.Delete(ctx, companyID, areaID); err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	return nil
}

func (uc *AreaAdminUseCase) ListAreas(ctx context.Context, companyID string) ([]domain.AreaSummary, error) {
	areas, err := uc.areas.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return areas, nil
}

func (uc *AreaAdminUseCase) requireAdmin(ctx context.Context, companyID, actorID string) error {
	actor, err := uc.users.GetByID(ctx, companyID, actorID)
	if err != nil {
		return fmt.Errorf("fetch actor: %w", err)
	}
	if actor.Role != domain.RoleAdmin {
		return domain.WrapError(domain.ErrPermission, "manage areas", errors.New("only admins manage areas"))
	}
	return nil
}
