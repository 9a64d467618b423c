package exposure

import (
	"context"
	"testing"
	"time"

	"credit-ledger/internal/adapter/repository/mysql"
	"credit-ledger/internal/domain/apperr"
	domainExposure "credit-ledger/internal/domain/exposure"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/loan"
	"credit-ledger/internal/testutil/sqlitedb"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

type world struct {
	db     *gorm.DB
	uc     *Usecase
	bankA  string
	f1, f2 *facility.Facility
	loans  []*loan.Loan
}

// seed: bank A holds F1 (1,000,000) and F2 (500,000); bank B holds F3, which only
// starts on 2025-09-01. Loans: 300,000 and a later 200,000 on F1, 100,000 on F2.
func seed(t *testing.T) *world {
	t.Helper()
	db := sqlitedb.Open(t)
	ctx := context.Background()
	repo := mysql.NewFacilityRepository(db)
	w := &world{db: db, uc: NewUsecase(mysql.NewExposureRepository(db), mysql.NewGormUoW(db), nil, nil)}

	bankA := &facility.Bank{BankID: id.NewID32(), OwnerUserID: "owner1", Name: "A"}
	bankB := &facility.Bank{BankID: id.NewID32(), OwnerUserID: "owner1", Name: "B"}
	for _, b := range []*facility.Bank{bankA, bankB} {
		if err := repo.CreateBank(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	w.bankA = bankA.BankID

	mk := func(bank, limit, start string) *facility.Facility {
		f := &facility.Facility{
			FacilityID: id.NewID32(), OwnerUserID: "owner1", BankID: bank, Type: facility.TypeRevolving,
			CreditLimit: dec(limit), CostOfFundingMargin: dec("2"), StartDate: day(start), IsActive: true,
		}
		if err := repo.Create(ctx, f); err != nil {
			t.Fatal(err)
		}
		return f
	}
	w.f1 = mk(bankA.BankID, "1000000", "2025-01-01")
	w.f2 = mk(bankA.BankID, "500000", "2025-01-01")
	mk(bankB.BankID, "2000000", "2025-09-01")

	loans := mysql.NewLoanRepository(db)
	draw := func(f *facility.Facility, amount, start string) *loan.Loan {
		l := &loan.Loan{
			LoanID: id.NewID32(), FacilityID: f.FacilityID, BankID: f.BankID, OwnerUserID: "owner1",
			Amount: dec(amount), OutstandingPrincipal: dec(amount),
			StartDate: day(start), DueDate: day(start).AddDate(0, 3, 0),
			BenchmarkRate: dec("5"), Margin: dec("2"), BankRate: dec("7"),
			InterestBasis: daycount.Actual365, Status: loan.StatusActive, CycleNumber: 1,
		}
		if err := loans.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
		w.loans = append(w.loans, l)
		return l
	}
	draw(w.f1, "300000", "2025-07-01")
	draw(w.f1, "200000", "2025-08-15")
	draw(w.f2, "100000", "2025-07-10")
	return w
}

func byScope(rows []domainExposure.Snapshot) map[string]domainExposure.Snapshot {
	out := map[string]domainExposure.Snapshot{}
	for _, r := range rows {
		k := string(r.Granularity())
		if r.FacilityID != nil {
			k += ":" + *r.FacilityID
		} else if r.BankID != nil {
			k += ":" + *r.BankID
		}
		out[k] = r
	}
	return out
}

func TestUpsert_ThreeGranularities(t *testing.T) {
	w := seed(t)
	ctx := context.Background()

	rows, err := w.uc.Upsert(ctx, "owner1", day("2025-08-01"))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("want 1 global + 1 bank + 2 facility rows, got %d", len(rows))
	}
	m := byScope(rows)

	g := m["global"]
	if !g.TotalLimit.Equal(dec("1500000")) || !g.TotalOutstanding.Equal(dec("400000")) || g.ActiveLoanCount != 2 {
		t.Fatalf("global row: %+v", g)
	}
	if !g.UtilizationPercent.Equal(dec("26.6667")) {
		t.Fatalf("global percent = %s", g.UtilizationPercent)
	}
	if b := m["bank:"+w.bankA]; !b.TotalOutstanding.Equal(dec("400000")) {
		t.Fatalf("bank row: %+v", b)
	}
	if f := m["facility:"+w.f1.FacilityID]; !f.TotalOutstanding.Equal(dec("300000")) || f.ActiveLoanCount != 1 {
		t.Fatalf("F1 row: %+v", f)
	}

	stored, _ := w.uc.List(ctx, "owner1", day("2025-08-01"))
	if len(stored) != 4 {
		t.Fatalf("stored rows = %d", len(stored))
	}
}

func TestUpsert_RerunOverwritesAndDropsStale(t *testing.T) {
	w := seed(t)
	ctx := context.Background()
	d := day("2025-08-01")

	first, err := w.uc.Upsert(ctx, "owner1", d)
	if err != nil {
		t.Fatal(err)
	}

	// pay down the F1 loan and close F2
	loans := mysql.NewLoanRepository(w.db)
	l := w.loans[0]
	l.OutstandingPrincipal = dec("50000")
	if err := loans.Save(ctx, l); err != nil {
		t.Fatal(err)
	}
	w.f2.IsActive = false
	if err := mysql.NewFacilityRepository(w.db).Save(ctx, w.f2); err != nil {
		t.Fatal(err)
	}

	second, err := w.uc.Upsert(ctx, "owner1", d)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].RunID == second[0].RunID {
		t.Fatal("each run should carry its own run id")
	}

	stored, _ := w.uc.List(ctx, "owner1", d)
	if len(stored) != 3 {
		t.Fatalf("want 3 rows after F2 closed, got %d", len(stored))
	}
	for _, s := range stored {
		if s.RunID != second[0].RunID {
			t.Fatalf("row from an earlier run survived: %+v", s)
		}
		if s.FacilityID != nil && *s.FacilityID == w.f2.FacilityID {
			t.Fatal("closed facility still has a row")
		}
	}
	if g := byScope(stored)["global"]; !g.TotalOutstanding.Equal(dec("50000")) || !g.TotalLimit.Equal(dec("1000000")) {
		t.Fatalf("global row after rerun: %+v", g)
	}

	// another date is independent
	if _, err := w.uc.Upsert(ctx, "owner1", day("2025-08-20")); err != nil {
		t.Fatal(err)
	}
	if again, _ := w.uc.List(ctx, "owner1", d); len(again) != 3 {
		t.Fatalf("rows for %s touched by another date's run", d.Format(time.DateOnly))
	}
}

func TestUpsert_Validation(t *testing.T) {
	w := seed(t)
	if _, err := w.uc.Upsert(context.Background(), "", day("2025-08-01")); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("blank user: %v", err)
	}
	if _, err := w.uc.Upsert(context.Background(), "owner1", time.Time{}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("zero date: %v", err)
	}
}

func TestUpsert_UserWithoutFacilitiesGetsZeroGlobalRow(t *testing.T) {
	w := seed(t)
	rows, err := w.uc.Upsert(context.Background(), "nobody", day("2025-08-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].TotalLimit.IsZero() || !rows[0].UtilizationPercent.IsZero() {
		t.Fatalf("rows: %+v", rows)
	}
}
