package uow

import (
	"context"

	"credit-ledger/internal/domain/audit"
	"credit-ledger/internal/domain/collateral"
	"credit-ledger/internal/domain/exposure"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/ledger"
	"credit-ledger/internal/domain/loan"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans        loan.Repository
	Facilities   facility.Repository
	Transactions ledger.Repository
	Audit        audit.Repository
	Collateral   collateral.Repository
	Exposure     exposure.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in; the lock is held until fn returns
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
