package loan

import (
	"context"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/ledger"
	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"

	"github.com/shopspring/decimal"
)

// Cancel soft-deletes an active loan. The row stays queryable but no longer counts
// toward utilization.
func (u *Usecase) Cancel(ctx context.Context, in CancelInput) (res *LoanDTO, err error) {
	defer func() { u.metrics.ObserveTransition("cancel", err) }()

	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		next, err := domainLoan.Next(l.Status, domainLoan.EventCancel)
		if err != nil {
			return err
		}
		before := l.Snapshot()
		now := u.now().UTC()
		l.Status = next
		l.IsDeleted = true
		l.CancelledAt = &now
		l.CancelledBy = in.ActorID
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		memo := "loan cancelled"
		if in.Reason != "" {
			memo += ": " + in.Reason
		}
		txn := newTxn(ledger.TypeVoid, l.OutstandingPrincipal, u.today(), l, memo, in.ActorID)
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}
		if _, err := refreshLine(ctx, r, l.CreditLineID); err != nil {
			return err
		}
		u.auditLoan(ctx, r, "cancel", in.ActorID, in.Reason, &before, l)

		d := u.dto(l)
		res = &d
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return res, nil
}

// PermanentlyDelete erases a cancelled loan. It is the only hard-delete path; the ledger
// and audit rows about the loan are kept.
func (u *Usecase) PermanentlyDelete(ctx context.Context, in DeleteInput) (err error) {
	defer func() { u.metrics.ObserveTransition("purge", err) }()

	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if _, err := domainLoan.Next(l.Status, domainLoan.EventPurge); err != nil {
			return err
		}
		before := l.Snapshot()
		if err := r.Loans.Delete(ctx, l); err != nil {
			return err
		}
		txn := newTxn(ledger.TypeOther, decimal.Zero, u.today(), l, "loan permanently deleted", in.ActorID)
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}
		u.auditLoan(ctx, r, "permanent_delete", in.ActorID, "", &before, nil)
		return nil
	})
	return apperr.Wrap(err)
}
