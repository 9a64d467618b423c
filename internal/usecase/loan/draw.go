package loan

import (
	"context"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/audit"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/ledger"
	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"
	auditUC "credit-ledger/internal/usecase/audit"
	"credit-ledger/internal/usecase/utilization"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/id"
	"credit-ledger/pkg/rate"

	"go.uber.org/zap"
)

// Draw creates cycle 1 of a new loan. Limits are advisory: an overage is returned as a
// warning and the draw still goes through.
func (u *Usecase) Draw(ctx context.Context, in DrawInput) (res *DrawResult, err error) {
	defer func() { u.metrics.ObserveTransition("draw", err) }()

	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount_not_positive", "amount must be greater than zero")
	}
	basis := daycount.Actual365
	if in.InterestBasis != "" {
		if basis, err = daycount.ParseBasis(in.InterestBasis); err != nil {
			return nil, apperr.Validation("basis_invalid", "%v", err)
		}
	}
	start := u.dateOr(in.StartDate)
	term, due, err := u.schedule(start, in.DueDate, in.TermMonths, in.TermDays)
	if err != nil {
		return nil, err
	}
	benchmark, src, err := u.resolveBenchmark(ctx, term, in.BenchmarkRate)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Facilities.GetByFacilityIDForUpdate(ctx, in.FacilityID)
		if err != nil {
			return notFound(err, errFacilityNotFound)
		}
		if !f.IsActive {
			return apperr.Precondition("facility_inactive", "facility %s is not active", f.FacilityID)
		}
		if f.ExpiredOn(start) {
			return apperr.Precondition("facility_expired", "facility %s expired on %s",
				f.FacilityID, f.ExpiryDate.Format("2006-01-02"))
		}

		var line *facility.CreditLine
		if in.CreditLineID != "" {
			if line, err = r.Facilities.GetCreditLine(ctx, in.CreditLineID); err != nil {
				return notFound(err, errCreditLineNotFound)
			}
			if line.FacilityID != f.FacilityID {
				return apperr.Validation("credit_line_mismatch", "credit line %s does not belong to facility %s",
					line.CreditLineID, f.FacilityID)
			}
			if !line.IsActive {
				return apperr.Precondition("credit_line_inactive", "credit line %s is not active", line.CreditLineID)
			}
		}

		br, err := bankRate(benchmark, f.CostOfFundingMargin, line)
		if err != nil {
			return err
		}

		l := &domainLoan.Loan{
			LoanID:               id.NewID32(),
			FacilityID:           f.FacilityID,
			BankID:               f.BankID,
			OwnerUserID:          f.OwnerUserID,
			Amount:               in.Amount.Round(2),
			OutstandingPrincipal: in.Amount.Round(2),
			StartDate:            start,
			DueDate:              due,
			BenchmarkRate:        benchmark,
			BenchmarkTerm:        rate.TermLabel(term),
			TermMonths:           term,
			Margin:               f.CostOfFundingMargin,
			BankRate:             br,
			InterestBasis:        basis,
			Status:               domainLoan.StatusActive,
			CycleNumber:          1,
			Memo:                 in.Memo,
			CreatedBy:            in.ActorID,
		}
		if line != nil {
			l.CreditLineID = &line.CreditLineID
		}
		if in.ChargesDueDate != nil {
			cd := u.weekend.Adjust(daycount.Date(*in.ChargesDueDate))
			l.ChargesDueDate = &cd
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		if f.InitialDrawdownDate == nil {
			before := *f
			f.InitialDrawdownDate = &start
			if err := r.Facilities.Save(ctx, f); err != nil {
				return err
			}
			u.recorder.Record(ctx, r.Audit, auditUC.Entry{
				EntityType: audit.EntityFacility, EntityID: f.FacilityID, Action: "initial_drawdown",
				ActorID: in.ActorID, Before: &before, After: f,
			})
		}

		txn := newTxn(ledger.TypeDraw, l.Amount, start, l, in.Memo, in.ActorID)
		if err := appendTxn(ctx, r.Transactions, txn); err != nil {
			return err
		}

		var warnings []string
		fu, err := utilization.ForFacility(ctx, r.Loans, f)
		if err != nil {
			return err
		}
		if w := fu.Warning(); w != "" {
			warnings = append(warnings, w)
		}
		lu, err := refreshLine(ctx, r, l.CreditLineID)
		if err != nil {
			return err
		}
		if lu != nil && lu.Warning() != "" {
			warnings = append(warnings, lu.Warning())
		}
		for _, w := range warnings {
			u.log.Warn("credit utilization over limit",
				zap.String("loan_id", l.LoanID), zap.String("facility_id", f.FacilityID), zap.String("warning", w))
		}

		u.auditLoan(ctx, r, "draw", in.ActorID, "", nil, l)

		res = &DrawResult{Loan: u.dto(l), Transaction: txn, RateSource: src, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return res, nil
}
