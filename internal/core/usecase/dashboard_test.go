package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

func TestStatsCountsDerivationsSinceLocalMidnight(t *testing.T) {
	var gotSince time.Time
	history := &statsHistoryFake{
		historyRepoFake: historyRepoFake{derivedCount: 3},
		onCount:         func(since time.Time) { gotSince = since },
	}
	docs := &docRepoFake{
		countFn: func(_ string, status domain.DocumentStatus) (int, error) {
			if status == domain.StatusPending {
				return 4, nil
			}
			return 10, nil
		},
	}
	users := &userRepoFake{activeCount: 6}

	uc := NewDashboardUseCase(docs, users, history)
	loc := time.FixedZone("lima", -5*3600)
	uc.now = func() time.Time { return time.Date(2026, 3, 14, 15, 30, 0, 0, loc) }

	stats, err := uc.Stats(context.Background(), "comp-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalDocuments != 10 || stats.PendingDocuments != 4 || stats.ActiveUsers != 6 || stats.DerivedToday != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)
	if !gotSince.Equal(want) {
		t.Fatalf("expected count since %v, got %v", want, gotSince)
	}
}

func TestRecentFeedsUseFixedLimits(t *testing.T) {
	var gotFilter domain.DocumentFilter
	docs := &docRepoFake{
		listFn: func(_ string, filter domain.DocumentFilter) ([]domain.Document, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	uc := NewDashboardUseCase(docs, &userRepoFake{}, &historyRepoFake{})

	if _, err := uc.RecentDocuments(context.Background(), "comp-1"); err != nil {
		t.Fatalf("RecentDocuments() error = %v", err)
	}
	if gotFilter.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", gotFilter.Limit)
	}
}

type statsHistoryFake struct {
	historyRepoFake
	onCount func(since time.Time)
}

func (f *statsHistoryFake) CountDerivedSince(ctx context.Context, companyID string, since time.Time) (int, error) {
	if f.onCount != nil {
		f.onCount(since)
	}
	return f.historyRepoFake.CountDerivedSince(ctx, companyID, since)
}
