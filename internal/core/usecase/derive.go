package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// deriveMaxAttempts bounds the optimistic-concurrency retry loop. Each
// attempt re-reads the document, so every ledger entry carries the
// from-snapshot that was actually current when its update committed.
const deriveMaxAttempts = 3

type DeriveUseCase struct {
	docs   ports.DocumentRepository
	areas  ports.AreaRepository
	users  ports.UserRepository
	queue  ports.NotificationQueue
	logger *slog.Logger

	// statusOnDerive is the status applied by every derivation. The
	// observed product behavior keeps "derived" on re-routing; the knob
	// exists so a deployment can move re-routed documents back into
	// review instead.
	statusOnDerive domain.DocumentStatus
}

func NewDeriveUseCase(
	docs ports.DocumentRepository,
	areas ports.AreaRepository,
	users ports.UserRepository,
	queue ports.NotificationQueue,
	logger *slog.Logger,
	statusOnDerive domain.DocumentStatus,
) *DeriveUseCase {
	if statusOnDerive == "" {
		statusOnDerive = domain.StatusDerived
	}
	return &DeriveUseCase{
		docs:           docs,
		areas:          areas,
		users:          users,
		queue:          queue,
		logger:         logger,
		statusOnDerive: statusOnDerive,
	}
}

// Derive routes a document to a new area/user. The location update and
// the `derived` ledger entry are applied in one store transaction; the
// from-snapshot on the entry is read before the update, in the same
// attempt. The recipient notification is published after commit and is
// best-effort: its failure is logged, never surfaced.
func (uc *DeriveUseCase) Derive(
	ctx context.Context,
	companyID, actorID, documentID, targetAreaID, targetUserID, comment string,
) (*ports.DeriveResult, error) {
	if _, err := uc.areas.GetByID(ctx, companyID, targetAreaID); err != nil {
		return nil, fmt.Errorf("resolve target area: %w", err)
	}
	if targetUserID != "" {
		target, err := uc.users.GetByID(ctx, companyID, targetUserID)
		if err != nil {
			return nil, fmt.Errorf("resolve target user: %w", err)
		}
		if !target.CanReceiveDerivation() {
			return nil, domain.WrapError(domain.ErrValidation, "derive document",
				fmt.Errorf("user %s is inactive and cannot receive documents", targetUserID))
		}
	}

	doc, err := uc.docs.GetByID(ctx, companyID, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}

	var updated *domain.Document
	var entry *domain.HistoryEntry
	attempts := 0
	for attempt := 1; ; attempt++ {
		attempts = attempt
		entry = &domain.HistoryEntry{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			CompanyID:  companyID,
			UserID:     actorID,
			Action:     domain.ActionDerived,
			FromAreaID: doc.CurrentAreaID,
			FromUserID: doc.CurrentUserID,
			ToAreaID:   targetAreaID,
			ToUserID:   targetUserID,
			Comment:    comment,
			CreatedAt:  time.Now().UTC(),
		}
		updated, err = uc.docs.ApplyDerivation(ctx, domain.DerivationMutation{
			CompanyID:       companyID,
			DocumentID:      documentID,
			ExpectedVersion: doc.Version,
			TargetAreaID:    targetAreaID,
			TargetUserID:    targetUserID,
			NewStatus:       uc.statusOnDerive,
			Entry:           entry,
		})
		if err == nil {
			break
		}
		if !domain.IsKind(err, domain.ErrConflict) || attempt >= deriveMaxAttempts {
			return nil, fmt.Errorf("apply derivation: %w", err)
		}
		// Another derivation landed first. Re-read so the retry carries
		// the snapshot that row now holds.
		doc, err = uc.docs.GetByID(ctx, companyID, documentID)
		if err != nil {
			return nil, fmt.Errorf("refetch document: %w", err)
		}
	}

	uc.notify(ctx, updated, targetUserID)

	return &ports.DeriveResult{Document: updated, Entry: entry, Attempts: attempts}, nil
}

func (uc *DeriveUseCase) notify(ctx context.Context, doc *domain.Document, targetUserID string) {
	if targetUserID == "" {
		return
	}
	err := uc.queue.PublishDerived(ctx, domain.NotificationEvent{
		CompanyID:     doc.CompanyID,
		RecipientID:   targetUserID,
		DocumentID:    doc.ID,
		DocumentTitle: doc.Title,
		DerivedAt:     time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Warn("notification publish failed",
			"document_id", doc.ID,
			"recipient_id", targetUserID,
			"error", err,
		)
	}
}
