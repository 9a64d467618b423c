package utilization

import (
	"context"
	"testing"

	"credit-ledger/internal/adapter/repository/mysql"
	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/loan"
	"credit-ledger/internal/testutil/loanmock"
	"credit-ledger/internal/testutil/sqlitedb"
	"credit-ledger/pkg/id"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate(t *testing.T) {
	loans := []loan.Loan{
		{OutstandingPrincipal: d("300000")},
		{OutstandingPrincipal: d("200000")},
	}
	r := Calculate(d("1000000"), loans)
	if !r.Used.Equal(d("500000")) || !r.Available.Equal(d("500000")) || !r.Percent.Equal(d("50")) {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.OverLimit() || r.Warning() != "" {
		t.Fatalf("should be within limit")
	}
}

func TestCalculate_ZeroLimit(t *testing.T) {
	r := Calculate(decimal.Zero, []loan.Loan{{OutstandingPrincipal: d("10")}})
	if !r.Percent.IsZero() {
		t.Fatalf("percent must be 0 when limit is 0, got %s", r.Percent)
	}
	if !r.Available.Equal(d("-10")) || !r.OverLimit() {
		t.Fatalf("available must go negative, got %s", r.Available)
	}
}

func TestCalculate_OverLimitNotClamped(t *testing.T) {
	r := Calculate(d("100"), []loan.Loan{{OutstandingPrincipal: d("150")}})
	if !r.Used.Equal(d("150")) || !r.Percent.Equal(d("150")) {
		t.Fatalf("overage clamped: %+v", r)
	}
	if r.Warning() == "" {
		t.Fatalf("expected warning")
	}
}

func TestForFacility_UsesRepo(t *testing.T) {
	repo := &loanmock.Repo{ListActiveByFacilityFn: func(_ context.Context, fid string) ([]loan.Loan, error) {
		return []loan.Loan{{OutstandingPrincipal: d("40")}}, nil
	}}
	r, err := ForFacility(context.Background(), repo, &facility.Facility{FacilityID: "F", CreditLimit: d("80")})
	if err != nil {
		t.Fatalf("ForFacility: %v", err)
	}
	if r.Scope != ScopeFacility || r.ID != "F" || !r.Percent.Equal(d("50")) {
		t.Fatalf("unexpected: %+v", r)
	}
}

func TestCompute_ResolvesLineThenFacility(t *testing.T) {
	db := sqlitedb.Open(t)
	ctx := context.Background()
	facilities := mysql.NewFacilityRepository(db)
	loans := mysql.NewLoanRepository(db)

	f := &facility.Facility{FacilityID: id.NewID32(), CreditLimit: d("1000"), Type: facility.TypeRevolving}
	if err := facilities.Create(ctx, f); err != nil {
		t.Fatal(err)
	}
	cl := &facility.CreditLine{CreditLineID: id.NewID32(), FacilityID: f.FacilityID, CreditLimit: d("400"), AvailableLimit: d("400")}
	if err := facilities.CreateCreditLine(ctx, cl); err != nil {
		t.Fatal(err)
	}
	onLine := &loan.Loan{LoanID: id.NewID32(), FacilityID: f.FacilityID, CreditLineID: &cl.CreditLineID,
		OutstandingPrincipal: d("100"), Status: loan.StatusActive}
	direct := &loan.Loan{LoanID: id.NewID32(), FacilityID: f.FacilityID, OutstandingPrincipal: d("300"), Status: loan.StatusActive}
	for _, l := range []*loan.Loan{onLine, direct} {
		if err := loans.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	u := NewUsecase(loans, facilities)

	lr, err := u.Compute(ctx, cl.CreditLineID)
	if err != nil {
		t.Fatalf("Compute line: %v", err)
	}
	if lr.Scope != ScopeCreditLine || !lr.Used.Equal(d("100")) || !lr.Percent.Equal(d("25")) {
		t.Fatalf("line result: %+v", lr)
	}

	fr, err := u.Compute(ctx, f.FacilityID)
	if err != nil {
		t.Fatalf("Compute facility: %v", err)
	}
	if fr.Scope != ScopeFacility || !fr.Used.Equal(d("400")) || fr.ActiveLoans != 2 {
		t.Fatalf("facility result: %+v", fr)
	}

	if _, err := u.Compute(ctx, "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}
