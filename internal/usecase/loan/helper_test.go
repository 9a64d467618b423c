package loan

import (
	"context"
	"testing"
	"time"

	"credit-ledger/internal/adapter/repository/mysql"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/uow"
	"credit-ledger/internal/testutil/sqlitedb"
	"credit-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	db       *gorm.DB
	uc       *Usecase
	now      time.Time
	facility *facility.Facility
	line     *facility.CreditLine
}

// setNow moves the usecase clock.
func (fx *fixture) setNow(s string) { fx.now = day(s) }

// newFixture seeds one bank, one revolving facility (limit 5,000,000, margin 1.95)
// and one credit line (limit 2,000,000), with the clock at 2025-07-19.
func newFixture(t *testing.T, tx func(uow.UnitOfWork) uow.UnitOfWork, opts ...Option) *fixture {
	t.Helper()
	db := sqlitedb.Open(t)
	ctx := context.Background()
	fx := &fixture{db: db, now: day("2025-07-19")}

	facilities := mysql.NewFacilityRepository(db)
	bank := &facility.Bank{BankID: id.NewID32(), OwnerUserID: "owner1", Name: "Gulf Bank"}
	if err := facilities.CreateBank(ctx, bank); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
	fx.facility = &facility.Facility{
		FacilityID:          id.NewID32(),
		OwnerUserID:         "owner1",
		BankID:              bank.BankID,
		Name:                "RCF",
		Type:                facility.TypeRevolving,
		CreditLimit:         dec("5000000"),
		CostOfFundingMargin: dec("1.95"),
		StartDate:           day("2025-01-01"),
		IsActive:            true,
	}
	if err := facilities.Create(ctx, fx.facility); err != nil {
		t.Fatalf("seed facility: %v", err)
	}
	fx.line = &facility.CreditLine{
		CreditLineID:   id.NewID32(),
		FacilityID:     fx.facility.FacilityID,
		Name:           "Line A",
		CreditLimit:    dec("2000000"),
		AvailableLimit: dec("2000000"),
		IsActive:       true,
	}
	if err := facilities.CreateCreditLine(ctx, fx.line); err != nil {
		t.Fatalf("seed line: %v", err)
	}

	var unit uow.UnitOfWork = mysql.NewGormUoW(db)
	if tx != nil {
		unit = tx(unit)
	}
	opts = append([]Option{WithClock(func() time.Time { return fx.now })}, opts...)
	fx.uc = NewUsecase(
		mysql.NewLoanRepository(db),
		facilities,
		mysql.NewTransactionRepository(db),
		unit,
		opts...,
	)
	return fx
}

// draw1M draws 1,000,000 at 5.55 + 1.95 = 7.50% on actual/360, starting today.
func (fx *fixture) draw1M(t *testing.T, onLine bool) *DrawResult {
	t.Helper()
	in := DrawInput{
		FacilityID:    fx.facility.FacilityID,
		Amount:        dec("1000000"),
		StartDate:     fx.now,
		TermMonths:    3,
		BenchmarkRate: decPtr("5.55"),
		InterestBasis: "actual_360",
		ActorID:       "actor1",
	}
	if onLine {
		in.CreditLineID = fx.line.CreditLineID
	}
	res, err := fx.uc.Draw(context.Background(), in)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	return res
}

func ptrTime(t time.Time) *time.Time { return &t }
