package loan

import (
	"context"
	"fmt"
	"strings"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/ledger"
	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"

	"github.com/shopspring/decimal"
)

// Settle closes an active loan. Without an amount the full balance (principal plus
// interest due at the date) is settled. Principal and carried interest are left as they
// were so a reversal resumes accrual exactly where it stopped.
func (u *Usecase) Settle(ctx context.Context, in SettleInput) (res *LoanDTO, err error) {
	defer func() { u.metrics.ObserveTransition("settle", err) }()

	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount_not_positive", "settlement amount must be greater than zero")
	}
	date := u.dateOr(in.Date)

	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		next, err := domainLoan.Next(l.Status, domainLoan.EventSettle)
		if err != nil {
			return err
		}
		if date.Before(l.StartDate) {
			return apperr.Validation("date_before_start", "settlement date precedes loan start date %s",
				l.StartDate.Format("2006-01-02"))
		}

		due := l.InterestDue(date).Round(2)
		amount := l.OutstandingPrincipal.Add(due)
		if in.Amount != nil {
			amount = in.Amount.Round(2)
		}
		alloc := settlementSplit(amount, due, l.OutstandingPrincipal)

		before := l.Snapshot()
		l.Status = next
		settled := date
		l.SettledDate = &settled
		l.SettledAmount = &amount
		l.PayoffTransactionID = nil
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		memo := in.Memo
		if memo == "" {
			memo = "settlement"
		}
		txn := newTxn(ledger.TypeRepayment, amount, date, l, memo, in.ActorID)
		txn.SetAllocation(alloc)
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}
		if _, err := refreshLine(ctx, r, l.CreditLineID); err != nil {
			return err
		}
		u.auditLoan(ctx, r, "settle", in.ActorID, in.Memo, &before, l)

		d := u.dto(l)
		res = &d
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return res, nil
}

// settlementSplit pays interest first, then principal; anything beyond is fees.
func settlementSplit(amount, interestDue, principal decimal.Decimal) ledger.Allocation {
	interest := decimal.Min(amount, interestDue)
	rest := amount.Sub(interest)
	p := decimal.Min(rest, principal)
	return ledger.Allocation{Interest: interest, Principal: p, Fees: rest.Sub(p)}
}

// ReverseSettlement reopens a settled loan. The original settlement transaction stays in
// the ledger; a void transaction records the reversal.
func (u *Usecase) ReverseSettlement(ctx context.Context, in ReverseInput) (res *LoanDTO, err error) {
	defer func() { u.metrics.ObserveTransition("reverse", err) }()

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperr.Validation("reason_required", "a reason is required to reverse a settlement")
	}

	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		next, err := domainLoan.Next(l.Status, domainLoan.EventReverse)
		if err != nil {
			return err
		}
		if l.WasRevolved() {
			return apperr.Precondition("revolved_cycle_locked",
				"loan was revolved into %s; its close-out cannot be reversed", *l.RevolvedIntoLoanID)
		}

		reversed := decimal.Zero
		if l.SettledAmount != nil {
			reversed = *l.SettledAmount
		}
		before := l.Snapshot()
		if l.PayoffTransactionID != nil {
			if err := restorePayoff(ctx, r, l); err != nil {
				return err
			}
		}
		now := u.now().UTC()
		l.Status = next
		l.SettledDate = nil
		l.SettledAmount = nil
		l.PayoffTransactionID = nil
		l.ReversedAt = &now
		l.ReversalReason = reason
		l.ReversedBy = in.ActorID
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		txn := newTxn(ledger.TypeVoid, reversed, u.today(), l, fmt.Sprintf("settlement reversed: %s", reason), in.ActorID)
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}
		if _, err := refreshLine(ctx, r, l.CreditLineID); err != nil {
			return err
		}
		u.auditLoan(ctx, r, "reverse_settlement", in.ActorID, reason, &before, l)

		d := u.dto(l)
		res = &d
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return res, nil
}

// restorePayoff puts back the principal and interest a closing repayment cleared.
// Accrual restarts from that payment's date, which is already the loan's LastAccrualDate.
func restorePayoff(ctx context.Context, r uow.Repos, l *domainLoan.Loan) error {
	txn, err := r.Transactions.GetByTransactionID(ctx, *l.PayoffTransactionID)
	if err != nil {
		return err
	}
	alloc, ok := txn.Allocation()
	if !ok {
		return apperr.Precondition("payoff_allocation_missing",
			"payoff transaction %s carries no allocation", txn.TransactionID)
	}
	l.OutstandingPrincipal = l.OutstandingPrincipal.Add(alloc.Principal).Round(2)
	l.InterestCarried = l.InterestCarried.Add(alloc.Interest).Round(6)
	return nil
}
