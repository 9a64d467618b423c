package loan

import (
	"context"
	"fmt"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/ledger"
	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/id"
	"credit-ledger/pkg/rate"
)

// Revolve rolls an active loan into its next cycle, dated today or earlier. It is refused
// while any interest is outstanding as of today. The successor inherits the source's margin unchanged, and the
// source is closed out in the same transaction so only one cycle is ever active.
func (u *Usecase) Revolve(ctx context.Context, in RevolveInput) (res *RevolveResult, err error) {
	defer func() { u.metrics.ObserveTransition("revolve", err) }()

	today := u.today()
	start := today
	if in.StartDate != nil {
		start = daycount.Date(*in.StartDate)
	}
	// the interest gate runs at today; a later close-out would skip the days in between
	if start.After(today) {
		return nil, apperr.Validation("revolve_date_in_future", "revolve date %s is after today %s",
			start.Format("2006-01-02"), today.Format("2006-01-02"))
	}
	term, due, err := u.schedule(start, in.DueDate, in.TermMonths, in.TermDays)
	if err != nil {
		return nil, err
	}
	benchmark, src, err := u.resolveBenchmark(ctx, term, in.BenchmarkRate)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		next, err := domainLoan.Next(l.Status, domainLoan.EventRevolve)
		if err != nil {
			return err
		}
		if accrued := l.InterestDue(today).Round(2); accrued.IsPositive() {
			return apperr.Precondition("accrued_interest_outstanding",
				"accrued interest of %s must be settled before revolving", accrued.StringFixed(2))
		}
		if in.Margin != nil && !in.Margin.Equal(l.Margin) {
			return apperr.Validation("margin_frozen",
				"margin is fixed at %s for this loan and cannot change on revolve", l.Margin.String())
		}
		if !l.OutstandingPrincipal.IsPositive() {
			return apperr.Precondition("nothing_to_revolve", "loan has no outstanding principal to revolve")
		}
		if start.Before(l.StartDate) {
			return apperr.Validation("date_before_start", "revolve date precedes loan start date %s",
				l.StartDate.Format("2006-01-02"))
		}

		f, err := r.Facilities.GetByFacilityIDForUpdate(ctx, l.FacilityID)
		if err != nil {
			return notFound(err, errFacilityNotFound)
		}
		if deadline, ok := f.RevolvingDeadline(); ok && due.After(deadline) {
			return apperr.Precondition("revolving_period_exceeded",
				"due date %s is past the facility revolving deadline %s",
				due.Format("2006-01-02"), deadline.Format("2006-01-02"))
		}
		var line *facility.CreditLine
		if l.CreditLineID != nil {
			if line, err = r.Facilities.GetCreditLine(ctx, *l.CreditLineID); err != nil {
				return notFound(err, errCreditLineNotFound)
			}
		}
		br, err := bankRate(benchmark, l.Margin, line)
		if err != nil {
			return err
		}

		parentID := l.LoanID
		successor := &domainLoan.Loan{
			LoanID:               id.NewID32(),
			FacilityID:           l.FacilityID,
			CreditLineID:         l.CreditLineID,
			BankID:               l.BankID,
			OwnerUserID:          l.OwnerUserID,
			Amount:               l.OutstandingPrincipal,
			OutstandingPrincipal: l.OutstandingPrincipal,
			StartDate:            start,
			DueDate:              due,
			BenchmarkRate:        benchmark,
			BenchmarkTerm:        rate.TermLabel(term),
			TermMonths:           term,
			Margin:               l.Margin,
			BankRate:             br,
			InterestBasis:        l.InterestBasis,
			Status:               domainLoan.StatusActive,
			ParentLoanID:         &parentID,
			CycleNumber:          l.CycleNumber + 1,
			Memo:                 in.Memo,
			CreatedBy:            in.ActorID,
		}
		if err := r.Loans.Create(ctx, successor); err != nil {
			return err
		}

		before := l.Snapshot()
		closed := start
		rolled := l.OutstandingPrincipal
		l.Status = next
		l.SettledDate = &closed
		l.SettledAmount = &rolled
		l.RevolvedIntoLoanID = &successor.LoanID
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		memo := in.Memo
		if memo == "" {
			memo = fmt.Sprintf("revolved from %s (cycle %d)", l.LoanID, l.CycleNumber)
		}
		txn := newTxn(ledger.TypeDraw, successor.Amount, start, successor, memo, in.ActorID)
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}
		if _, err := refreshLine(ctx, r, successor.CreditLineID); err != nil {
			return err
		}

		u.auditLoan(ctx, r, "revolve", in.ActorID, "", &before, l)
		u.auditLoan(ctx, r, "draw", in.ActorID, "revolved from "+l.LoanID, nil, successor)

		res = &RevolveResult{Source: u.dto(l), Successor: u.dto(successor), Transaction: txn, RateSource: src}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return res, nil
}
