package domain

import (
	"fmt"
	"time"
)

type HistoryAction string

const (
	ActionCreated       HistoryAction = "created"
	ActionViewed        HistoryAction = "viewed"
	ActionDownloaded    HistoryAction = "downloaded"
	ActionDerived       HistoryAction = "derived"
	ActionEdited        HistoryAction = "edited"
	ActionStatusChanged HistoryAction = "status_changed"
	ActionCommented     HistoryAction = "commented"
)

func ParseHistoryAction(s string) (HistoryAction, error) {
	switch HistoryAction(s) {
	case ActionCreated, ActionViewed, ActionDownloaded, ActionDerived, ActionEdited, ActionStatusChanged, ActionCommented:
		return HistoryAction(s), nil
	default:
		return "", WrapError(ErrValidation, "parse history action", fmt.Errorf("unknown action %q", s))
	}
}

// HistoryOrder selects the read direction of a document's ledger.
type HistoryOrder string

const (
	// NewestFirst is the primary read pattern (detail sidebar).
	NewestFirst HistoryOrder = "desc"
	// OldestFirst drives the full-history timeline view.
	OldestFirst HistoryOrder = "asc"
)

// HistoryEntry is an immutable fact about one action taken on one
// document. The from/to fields are value snapshots copied at write
// time, not live references: the ledger stays readable even if the
// referenced area or user is later deleted or reassigned. Entries are
// never updated or deleted once written.
type HistoryEntry struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	CompanyID  string        `json:"company_id"`
	UserID     string        `json:"user_id"`
	Action     HistoryAction `json:"action"`
	FromAreaID string        `json:"from_area_id,omitempty"`
	ToAreaID   string        `json:"to_area_id,omitempty"`
	FromUserID string        `json:"from_user_id,omitempty"`
	ToUserID   string        `json:"to_user_id,omitempty"`
	Comment    string        `json:"comment,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ActivityEntry is a HistoryEntry joined with display names for the
// dashboard activity feed.
type ActivityEntry struct {
	HistoryEntry
	DocumentTitle string `json:"document_title"`
	ActorName     string `json:"actor_name"`
	ToAreaName    string `json:"to_area_name,omitempty"`
}
