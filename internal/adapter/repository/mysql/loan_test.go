package mysql

import (
	"context"
	"errors"
	"testing"

	"credit-ledger/internal/domain/loan"
	"credit-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestCreateAndGetByLoanID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByLoanID(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.FacilityID != l.FacilityID || !got.Amount.Equal(l.Amount) {
		t.Errorf("unexpected loan: %+v", got)
	}
	if !got.StartDate.Equal(l.StartDate) {
		t.Errorf("start date round-trip: got %v want %v", got.StartDate, l.StartDate)
	}
	if got.InterestBasis != l.InterestBasis {
		t.Errorf("basis: got %q", got.InterestBasis)
	}
}

func TestSaveUpdates(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	l.OutstandingPrincipal = decimal.NewFromInt(750_000)
	l.Memo = "partial paydown"
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLoanIDForUpdate(ctx, l.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanIDForUpdate: %v", err)
	}
	if !got.OutstandingPrincipal.Equal(decimal.NewFromInt(750_000)) || got.Memo != "partial paydown" {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestGetByLoanID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	_, err := repo.GetByLoanID(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListActive_FiltersStatusAndDeleted(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	fac := id.NewID32()
	line := id.NewID32()

	active := makeLoan(fac)
	active.CreditLineID = &line
	settled := makeLoan(fac)
	settled.Status = loan.StatusSettled
	cancelled := makeLoan(fac)
	cancelled.Status = loan.StatusCancelled
	cancelled.IsDeleted = true
	other := makeLoan(id.NewID32())

	for _, l := range []*loan.Loan{active, settled, cancelled, other} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := repo.ListActiveByFacility(ctx, fac)
	if err != nil {
		t.Fatalf("ListActiveByFacility: %v", err)
	}
	if len(got) != 1 || got[0].LoanID != active.LoanID {
		t.Fatalf("want only the active loan, got %d rows", len(got))
	}

	byLine, err := repo.ListActiveByCreditLine(ctx, line)
	if err != nil || len(byLine) != 1 {
		t.Fatalf("ListActiveByCreditLine: n=%d err=%v", len(byLine), err)
	}

	byOwner, err := repo.ListActiveByOwner(ctx, active.OwnerUserID)
	if err != nil || len(byOwner) != 2 {
		t.Fatalf("ListActiveByOwner: n=%d err=%v", len(byOwner), err)
	}

	n, err := repo.CountByFacility(ctx, fac)
	if err != nil || n != 3 {
		t.Fatalf("CountByFacility: n=%d err=%v", n, err)
	}
}

func TestDelete_RemovesRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	l := makeLoan(id.NewID32())
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, l); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByLoanID(ctx, l.LoanID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}
}
