package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// NotificationUseCase is the recipient-facing surface plus the worker
// side of the emitter: consuming queue events into notification rows.
type NotificationUseCase struct {
	notifications ports.NotificationRepository
	logger        *slog.Logger
}

func NewNotificationUseCase(notifications ports.NotificationRepository, logger *slog.Logger) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications, logger: logger}
}

// HandleDerivedEvent persists the alert for one queue event. It is the
// notifier worker's handler.
func (uc *NotificationUseCase) HandleDerivedEvent(ctx context.Context, event domain.NotificationEvent) error {
	n := domain.DerivedNotification(event)
	n.ID = uuid.NewString()
	if err := uc.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	uc.logger.Info("notification created",
		"recipient_id", n.UserID,
		"document_id", n.DocumentID,
	)
	return nil
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, companyID, userID string, unreadOnly bool) ([]domain.Notification, error) {
	list, err := uc.notifications.ListByUser(ctx, companyID, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (uc *NotificationUseCase) MarkNotificationRead(ctx context.Context, companyID, userID, notificationID string) error {
	if err := uc.notifications.MarkRead(ctx, companyID, userID, notificationID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
