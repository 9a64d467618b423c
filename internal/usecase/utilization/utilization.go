package utilization

import (
	"context"
	"errors"
	"fmt"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Scope string

const (
	ScopeFacility   Scope = "facility"
	ScopeCreditLine Scope = "credit_line"
)

type Result struct {
	Scope       Scope           `json:"scope"`
	ID          string          `json:"id"`
	Limit       decimal.Decimal `json:"limit"`
	Used        decimal.Decimal `json:"used"`
	Available   decimal.Decimal `json:"available"`
	Percent     decimal.Decimal `json:"utilization_percent"`
	ActiveLoans int             `json:"active_loans"`
}

// OverLimit reports whether used credit exceeds the limit. Available goes negative, it is never clamped.
func (r Result) OverLimit() bool { return r.Available.IsNegative() }

// Warning describes an overage; empty when within limit.
func (r Result) Warning() string {
	if !r.OverLimit() {
		return ""
	}
	return fmt.Sprintf("%s %s utilization %s%% exceeds limit %s by %s",
		r.Scope, r.ID, r.Percent.StringFixed(2), r.Limit.StringFixed(2), r.Available.Neg().StringFixed(2))
}

var hundred = decimal.NewFromInt(100)

// Calculate sums outstanding principal over loans; callers pass only the active loans
// attributable to the scope.
func Calculate(limit decimal.Decimal, loans []loan.Loan) Result {
	used := decimal.Zero
	for i := range loans {
		used = used.Add(loans[i].OutstandingPrincipal)
	}
	pct := decimal.Zero
	if limit.IsPositive() {
		pct = used.Div(limit).Mul(hundred).Round(4)
	}
	return Result{
		Limit:       limit,
		Used:        used,
		Available:   limit.Sub(used),
		Percent:     pct,
		ActiveLoans: len(loans),
	}
}

// ForFacility computes utilization over every active loan of the facility.
func ForFacility(ctx context.Context, loans loan.Repository, f *facility.Facility) (Result, error) {
	ls, err := loans.ListActiveByFacility(ctx, f.FacilityID)
	if err != nil {
		return Result{}, err
	}
	r := Calculate(f.CreditLimit, ls)
	r.Scope, r.ID = ScopeFacility, f.FacilityID
	return r, nil
}

// ForCreditLine computes utilization over the active loans drawn on the line.
func ForCreditLine(ctx context.Context, loans loan.Repository, cl *facility.CreditLine) (Result, error) {
	ls, err := loans.ListActiveByCreditLine(ctx, cl.CreditLineID)
	if err != nil {
		return Result{}, err
	}
	r := Calculate(cl.CreditLimit, ls)
	r.Scope, r.ID = ScopeCreditLine, cl.CreditLineID
	return r, nil
}

type Usecase struct {
	loans      loan.Repository
	facilities facility.Repository
}

func NewUsecase(loans loan.Repository, facilities facility.Repository) *Usecase {
	return &Usecase{loans: loans, facilities: facilities}
}

// Compute resolves id as a credit line first, then as a facility.
func (u *Usecase) Compute(ctx context.Context, id string) (*Result, error) {
	cl, err := u.facilities.GetCreditLine(ctx, id)
	switch {
	case err == nil:
		r, err := ForCreditLine(ctx, u.loans, cl)
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		return &r, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Wrap(err)
	}

	f, err := u.facilities.GetByFacilityID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("scope_not_found", "no facility or credit line %s", id)
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	r, err := ForFacility(ctx, u.loans, f)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return &r, nil
}
