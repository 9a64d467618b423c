package mysql

import (
	"fmt"
	"testing"
	"time"

	"credit-ledger/internal/domain/loan"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/id"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB opens a private in-memory sqlite DB with the full schema.
// One connection only: sqlite has no row locks, so this also serializes writers.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func makeLoan(facilityID string) *loan.Loan {
	amt := decimal.NewFromInt(1_000_000)
	return &loan.Loan{
		LoanID:               id.NewID32(),
		FacilityID:           facilityID,
		BankID:               "bank00000000000000000000000000aa",
		OwnerUserID:          "user00000000000000000000000000aa",
		Amount:               amt,
		OutstandingPrincipal: amt,
		StartDate:            day("2025-07-19"),
		DueDate:              day("2025-10-19"),
		BenchmarkRate:        decimal.RequireFromString("5.55"),
		BenchmarkTerm:        "3M",
		TermMonths:           3,
		Margin:               decimal.RequireFromString("1.95"),
		BankRate:             decimal.RequireFromString("7.5"),
		InterestBasis:        daycount.Actual365,
		Status:               loan.StatusActive,
		CycleNumber:          1,
	}
}
