package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stephanofer/atlas/internal/core/domain"
)

func TestRecordViewAppendsEntryEveryTime(t *testing.T) {
	docs := &docRepoFake{
		getFn: func(_, _ string) (*domain.Document, error) {
			return &domain.Document{ID: "doc-1"}, nil
		},
	}
	history := &historyRepoFake{}
	uc := NewActivityUseCase(docs, history)

	for i := 0; i < 3; i++ {
		if err := uc.RecordView(context.Background(), "comp-1", "user-1", "doc-1"); err != nil {
			t.Fatalf("RecordView() error = %v", err)
		}
	}
	if len(history.appended) != 3 {
		t.Fatalf("repeated views must append repeated entries, got %d", len(history.appended))
	}
	for _, entry := range history.appended {
		if entry.Action != domain.ActionViewed {
			t.Fatalf("expected viewed action, got %s", entry.Action)
		}
		if entry.UserID != "user-1" || entry.DocumentID != "doc-1" {
			t.Fatalf("unexpected entry %+v", entry)
		}
	}
}

func TestRecordViewFailsForMissingDocument(t *testing.T) {
	docs := &docRepoFake{
		getFn: func(_, _ string) (*domain.Document, error) {
			return nil, domain.WrapError(domain.ErrNotFound, "fetch document", errors.New("gone"))
		},
	}
	history := &historyRepoFake{}
	uc := NewActivityUseCase(docs, history)

	err := uc.RecordView(context.Background(), "comp-1", "user-1", "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(history.appended) != 0 {
		t.Fatalf("no entry may be appended for a missing document")
	}
}

func TestListHistoryNormalizesOrder(t *testing.T) {
	docs := &docRepoFake{
		getFn: func(_, _ string) (*domain.Document, error) {
			return &domain.Document{ID: "doc-1"}, nil
		},
	}
	history := &orderCaptureHistoryFake{}
	uc := NewActivityUseCase(docs, history)

	if _, err := uc.ListHistory(context.Background(), "comp-1", "doc-1", "sideways"); err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if history.order != domain.NewestFirst {
		t.Fatalf("unknown order must fall back to newest-first, got %s", history.order)
	}

	if _, err := uc.ListHistory(context.Background(), "comp-1", "doc-1", domain.OldestFirst); err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if history.order != domain.OldestFirst {
		t.Fatalf("expected oldest-first passthrough, got %s", history.order)
	}
}

type orderCaptureHistoryFake struct {
	historyRepoFake
	order domain.HistoryOrder
}

func (f *orderCaptureHistoryFake) ListByDocument(ctx context.Context, companyID, documentID string, order domain.HistoryOrder) ([]domain.HistoryEntry, error) {
	f.order = order
	return f.historyRepoFake.ListByDocument(ctx, companyID, documentID, order)
}
