package mysql

import (
	"context"
	"testing"

	"credit-ledger/internal/domain/exposure"

	"github.com/shopspring/decimal"
)

func TestExposureUpsert_OverwritesSameScope(t *testing.T) {
	db := openTestDB(t)
	repo := NewExposureRepository(db)
	ctx := context.Background()

	user := "user00000000000000000000000000aa"
	bank := "bank00000000000000000000000000aa"
	fac := "faci00000000000000000000000000aa"
	d := day("2025-08-01")

	rows := []*exposure.Snapshot{
		{UserID: user, SnapshotDate: d, TotalLimit: decimal.NewFromInt(100), RunID: "r1"},
		{UserID: user, SnapshotDate: d, BankID: &bank, TotalLimit: decimal.NewFromInt(100), RunID: "r1"},
		{UserID: user, SnapshotDate: d, BankID: &bank, FacilityID: &fac, TotalLimit: decimal.NewFromInt(100), RunID: "r1"},
	}
	for _, s := range rows {
		if err := repo.Upsert(ctx, s); err != nil {
			t.Fatalf("Upsert r1: %v", err)
		}
	}

	again := &exposure.Snapshot{UserID: user, SnapshotDate: d, BankID: &bank, TotalLimit: decimal.NewFromInt(250), RunID: "r2"}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("Upsert r2: %v", err)
	}

	got, err := repo.ListByUserDate(ctx, user, d)
	if err != nil {
		t.Fatalf("ListByUserDate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 rows (one per scope), got %d", len(got))
	}
	for _, s := range got {
		if s.Granularity() == exposure.BankLevel && !s.TotalLimit.Equal(decimal.NewFromInt(250)) {
			t.Fatalf("bank row not overwritten: %s", s.TotalLimit)
		}
	}

	if err := repo.DeleteStale(ctx, user, d, "r2"); err != nil {
		t.Fatalf("DeleteStale: %v", err)
	}
	got, _ = repo.ListByUserDate(ctx, user, d)
	if len(got) != 1 || got[0].RunID != "r2" {
		t.Fatalf("stale rows not removed: %+v", got)
	}
}
