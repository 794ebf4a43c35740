package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// ActivityUseCase appends view/download facts to the ledger. Each call
// writes its own entry: a repeated view is a repeated fact, never
// deduplicated.
type ActivityUseCase struct {
	docs    ports.DocumentRepository
	history ports.HistoryRepository
}

func NewActivityUseCase(docs ports.DocumentRepository, history ports.HistoryRepository) *ActivityUseCase {
	return &ActivityUseCase{docs: docs, history: history}
}

func (uc *ActivityUseCase) RecordView(ctx context.Context, companyID, actorID, documentID string) error {
	return uc.record(ctx, companyID, actorID, documentID, domain.ActionViewed)
}

func (uc *ActivityUseCase) RecordDownload(ctx context.Context, companyID, actorID, documentID string) error {
	return uc.record(ctx, companyID, actorID, documentID, domain.ActionDownloaded)
}

func (uc *ActivityUseCase) record(ctx context.Context, companyID, actorID, documentID string, action domain.HistoryAction) error {
	if _, err := uc.docs.GetByID(ctx, companyID, documentID); err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}
	entry := &domain.HistoryEntry{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		CompanyID:  companyID,
		UserID:     actorID,
		Action:     action,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s entry: %w", action, err)
	}
	return nil
}

func (uc *ActivityUseCase) ListHistory(ctx context.Context, companyID, documentID string, order domain.HistoryOrder) ([]domain.HistoryEntry, error) {
	if order != domain.OldestFirst {
		order = domain.NewestFirst
	}
	if _, err := uc.docs.GetByID(ctx, companyID, documentID); err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	entries, err := uc.history.ListByDocument(ctx, companyID, documentID, order)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
