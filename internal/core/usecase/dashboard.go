package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

const (
	recentDocumentsLimit = 5
	recentActivityLimit  = 8
)

// DashboardUseCase serves the aggregate reads the dashboard depends on.
// Plain counts, no state transitions.
type DashboardUseCase struct {
	docs    ports.DocumentRepository
	users   ports.UserRepository
	history ports.HistoryRepository
	now     func() time.Time
}

func NewDashboardUseCase(docs ports.DocumentRepository, users ports.UserRepository, history ports.HistoryRepository) *DashboardUseCase {
	return &DashboardUseCase{docs: docs, users: users, history: history, now: time.Now}
}

func (uc *DashboardUseCase) Stats(ctx context.Context, companyID string) (*domain.DashboardStats, error) {
	total, err := uc.docs.CountByCompany(ctx, companyID, "")
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	pending, err := uc.docs.CountByCompany(ctx, companyID, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("count pending documents: %w", err)
	}
	activeUsers, err := uc.users.CountActive(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}

	now := uc.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	derivedToday, err := uc.history.CountDerivedSince(ctx, companyID, midnight)
	if err != nil {
		return nil, fmt.Errorf("count derivations today: %w", err)
	}

	return &domain.DashboardStats{
		TotalDocuments:   total,
		PendingDocuments: pending,
		ActiveUsers:      activeUsers,
		DerivedToday:     derivedToday,
	}, nil
}

func (uc *DashboardUseCase) RecentDocuments(ctx context.Context, companyID string) ([]domain.Document, error) {
	docs, err := uc.docs.List(ctx, companyID, domain.DocumentFilter{Limit: recentDocumentsLimit})
	if err != nil {
		return nil, fmt.Errorf("list recent documents: %w", err)
	}
	return docs, nil
}

func (uc *DashboardUseCase) RecentActivity(ctx context.Context, companyID string) ([]domain.ActivityEntry, error) {
	entries, err := uc.history.ListRecentActivity(ctx, companyID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	return entries, nil
}
