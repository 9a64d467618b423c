package loan

import (
	"context"
	"errors"
	"strings"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/ledger"
	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecordRepayment books a payment against an active loan. Interest due is crystallised
// at the payment date, so the loan carries any unpaid part forward and accrues afresh on
// the reduced principal. A key that was already used returns the original transaction.
func (u *Usecase) RecordRepayment(ctx context.Context, in RepaymentInput) (res *RepaymentResult, err error) {
	defer func() { u.metrics.ObserveTransition("repay", err) }()

	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount_not_positive", "amount must be greater than zero")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	date := u.dateOr(in.Date)

	// fast path; the unique index is what actually decides
	if key != "" {
		prior, err := u.txns.GetByIdempotencyKey(ctx, key)
		switch {
		case err == nil:
			return u.replay(ctx, prior, in.LoanID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperr.Wrap(err)
		}
	}

	var prior *ledger.Transaction
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if key != "" {
			p, err := r.Transactions.GetByIdempotencyKey(ctx, key)
			if err == nil {
				prior = p
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if _, err := domainLoan.Next(l.Status, domainLoan.EventRepay); err != nil {
			return err
		}
		if date.Before(l.StartDate) {
			return apperr.Validation("date_before_start", "payment date precedes loan start date %s",
				l.StartDate.Format("2006-01-02"))
		}

		amount := in.Amount.Round(2)
		alloc := ledger.Allocation{Principal: amount}
		if in.Allocation != nil {
			alloc = *in.Allocation
		}
		if err := alloc.Validate(amount); err != nil {
			return err
		}
		due := l.InterestDue(date)
		if alloc.Interest.GreaterThan(due.Round(2).Add(ledger.AllocationTolerance)) {
			return apperr.Validation("interest_exceeds_due", "interest part %s exceeds interest due %s",
				alloc.Interest.StringFixed(2), due.StringFixed(2))
		}
		if alloc.Principal.GreaterThan(l.OutstandingPrincipal.Add(ledger.AllocationTolerance)) {
			return apperr.Validation("principal_exceeds_outstanding", "principal part %s exceeds outstanding principal %s",
				alloc.Principal.StringFixed(2), l.OutstandingPrincipal.StringFixed(2))
		}

		txn := newTxn(ledger.TypeRepayment, amount, date, l, in.Memo, in.ActorID)
		txn.SetAllocation(alloc)
		if key != "" {
			k := key
			txn.IdempotencyKey = &k
		}

		before := l.Snapshot()
		if l.LastAccrualDate == nil || date.After(*l.LastAccrualDate) {
			d := date
			l.LastAccrualDate = &d
		}
		l.InterestCarried = decimal.Max(due.Sub(alloc.Interest), decimal.Zero).Round(6)
		l.OutstandingPrincipal = decimal.Max(l.OutstandingPrincipal.Sub(alloc.Principal), decimal.Zero).Round(2)

		// a payment that clears everything closes the loan
		if l.OutstandingPrincipal.IsZero() && l.InterestCarried.Round(2).IsZero() {
			l.Status = domainLoan.StatusSettled
			l.InterestCarried = decimal.Zero
			settled := date
			l.SettledDate = &settled
			l.SettledAmount = &amount
			payoff := txn.TransactionID
			l.PayoffTransactionID = &payoff
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}
		if _, err := refreshLine(ctx, r, l.CreditLineID); err != nil {
			return err
		}
		u.auditLoan(ctx, r, "repay", in.ActorID, "", &before, l)

		d := u.dto(l)
		res = &RepaymentResult{Transaction: txn, Loan: &d}
		return nil
	})

	switch {
	case err == nil && prior != nil:
		return u.replay(ctx, prior, in.LoanID)
	case key != "" && errors.Is(err, gorm.ErrDuplicatedKey):
		// lost the race to a concurrent request with the same key
		p, gerr := u.txns.GetByIdempotencyKey(ctx, key)
		if gerr != nil {
			return nil, apperr.Wrap(gerr)
		}
		return u.replay(ctx, p, in.LoanID)
	case err != nil:
		return nil, apperr.Wrap(err)
	}
	return res, nil
}

func (u *Usecase) replay(ctx context.Context, prior *ledger.Transaction, loanID string) (*RepaymentResult, error) {
	if prior.LoanID == nil || *prior.LoanID != loanID {
		return nil, apperr.Conflict("idempotency_key_reused", "idempotency key was already used for a different loan")
	}
	u.metrics.ObserveReplay()
	u.log.Info("idempotent replay",
		zap.String("loan_id", loanID), zap.String("transaction_id", prior.TransactionID))

	out := &RepaymentResult{Transaction: prior, Replayed: true}
	if l, err := u.loans.GetByLoanID(ctx, loanID); err == nil {
		d := u.dto(l)
		out.Loan = &d
	}
	return out, nil
}
