package domain

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationInfo     NotificationType = "info"
	NotificationSuccess  NotificationType = "success"
	NotificationWarning  NotificationType = "warning"
	NotificationError    NotificationType = "error"
	NotificationDocument NotificationType = "document"
)

// Notification is a recipient-facing alert created as a side effect of
// a derivation. Only the derivation path writes these; the recipient
// marks them read.
type Notification struct {
	ID         string           `json:"id"`
	CompanyID  string           `json:"company_id"`
	UserID     string           `json:"user_id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	DocumentID string           `json:"document_id,omitempty"`
	ActionURL  string           `json:"action_url,omitempty"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NotificationEvent is the queue payload published after a successful
// derivation. The notifier worker turns it into a Notification row.
type NotificationEvent struct {
	CompanyID     string    `json:"company_id"`
	RecipientID   string    `json:"recipient_id"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	DerivedAt     time.Time `json:"derived_at"`
}

// DerivedNotification builds the recipient-facing alert for a derived
// document.
func DerivedNotification(ev NotificationEvent) *Notification {
	return &Notification{
		CompanyID:  ev.CompanyID,
		UserID:     ev.RecipientID,
		Title:      "Nuevo documento recibido",
		Message:    fmt.Sprintf("Se te ha derivado el documento %q", ev.DocumentTitle),
		Type:       NotificationDocument,
		DocumentID: ev.DocumentID,
		ActionURL:  "/dashboard/documents/" + ev.DocumentID,
	}
}
