package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stephanofer/atlas/internal/core/domain"
)

func TestCreateAreaRequiresAdmin(t *testing.T) {
	users := &userRepoFake{users: adminActor()}
	areas := &areaRepoFake{}
	uc := NewAreaAdminUseCase(areas, users)

	_, err := uc.CreateArea(context.Background(), "comp-1", "plain-1", "Mesa de Partes", "")
	if !domain.IsKind(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}

	area, err := uc.CreateArea(context.Background(), "comp-1", "admin-1", "Mesa de Partes", "ingreso de documentos")
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}
	if area.ID == "" || areas.created == nil {
		t.Fatalf("area must be persisted with a generated id")
	}
}

func TestCreateAreaValidatesName(t *testing.T) {
	users := &userRepoFake{users: adminActor()}
	uc := NewAreaAdminUseCase(&areaRepoFake{}, users)

	_, err := uc.CreateArea(context.Background(), "comp-1", "admin-1", "ab", "")
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short name, got %v", err)
	}
	_, err = uc.CreateArea(context.Background(), "comp-1", "admin-1", "Mesa@Partes", "")
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for symbols, got %v", err)
	}
}

func TestDeleteAreaSurfacesDocumentGuard(t *testing.T) {
	users := &userRepoFake{users: adminActor()}
	areas := &areaRepoFake{
		deleteErr: domain.WrapError(domain.ErrConflict, "delete area", errors.New("area has 2 documents assigned")),
	}
	uc := NewAreaAdminUseCase(areas, users)

	err := uc.DeleteArea(context.Background(), "comp-1", "admin-1", "area-1")
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
