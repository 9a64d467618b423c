package collateral

import (
	"context"
	"errors"
	"strings"
	"time"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/audit"
	domainCollateral "credit-ledger/internal/domain/collateral"
	"credit-ledger/internal/domain/uow"
	auditUC "credit-ledger/internal/usecase/audit"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrCollateralNotFound = apperr.NotFound("collateral_not_found", "collateral not found")

type CreateInput struct {
	OwnerUserID string
	Description string
	Value       *decimal.Decimal
}

// AssignInput pledges a collateral to exactly one of a facility, a credit line or a bank.
type AssignInput struct {
	CollateralID  string
	FacilityID    string
	CreditLineID  string
	BankID        string
	PledgeType    string
	PledgedValue  *decimal.Decimal
	AdvanceRate   *decimal.Decimal
	EffectiveDate time.Time
	ReleaseDate   *time.Time
	ActorID       string
}

type Usecase struct {
	collateral domainCollateral.Repository
	uow        uow.UnitOfWork
	recorder   *auditUC.Recorder
}

func NewUsecase(repo domainCollateral.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{collateral: repo, uow: tx, recorder: auditUC.NewRecorder(log, nil)}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domainCollateral.Collateral, error) {
	if strings.TrimSpace(in.OwnerUserID) == "" {
		return nil, apperr.Validation("owner_required", "owner user id is required")
	}
	if in.Value != nil && in.Value.IsNegative() {
		return nil, apperr.Validation("value_negative", "collateral value must not be negative")
	}
	c := &domainCollateral.Collateral{
		CollateralID: id.NewID32(),
		OwnerUserID:  in.OwnerUserID,
		Description:  in.Description,
		Value:        in.Value,
	}
	if err := u.collateral.CreateCollateral(ctx, c); err != nil {
		return nil, apperr.Wrap(err)
	}
	return c, nil
}

// Assign validates the pledge, checks that the collateral and its single target exist,
// then stores the assignment with an audit row.
func (u *Usecase) Assign(ctx context.Context, in AssignInput) (*domainCollateral.Assignment, error) {
	a := &domainCollateral.Assignment{
		AssignmentID:  id.NewID32(),
		CollateralID:  in.CollateralID,
		FacilityID:    optional(in.FacilityID),
		CreditLineID:  optional(in.CreditLineID),
		BankID:        optional(in.BankID),
		PledgeType:    domainCollateral.PledgeType(in.PledgeType),
		PledgedValue:  in.PledgedValue,
		AdvanceRate:   in.AdvanceRate,
		EffectiveDate: in.EffectiveDate,
		CreatedBy:     in.ActorID,
	}
	if !in.EffectiveDate.IsZero() {
		a.EffectiveDate = daycount.Date(in.EffectiveDate)
	}
	if in.ReleaseDate != nil {
		r := daycount.Date(*in.ReleaseDate)
		a.ReleaseDate = &r
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Collateral.GetCollateral(ctx, a.CollateralID); err != nil {
			return notFound(err, ErrCollateralNotFound)
		}
		var err error
		switch {
		case a.FacilityID != nil:
			_, err = r.Facilities.GetByFacilityID(ctx, *a.FacilityID)
			err = notFound(err, apperr.NotFound("target_not_found", "facility %s not found", *a.FacilityID))
		case a.CreditLineID != nil:
			_, err = r.Facilities.GetCreditLine(ctx, *a.CreditLineID)
			err = notFound(err, apperr.NotFound("target_not_found", "credit line %s not found", *a.CreditLineID))
		default:
			_, err = r.Facilities.GetBank(ctx, *a.BankID)
			err = notFound(err, apperr.NotFound("target_not_found", "bank %s not found", *a.BankID))
		}
		if err != nil {
			return err
		}

		if err := r.Collateral.CreateAssignment(ctx, a); err != nil {
			return err
		}
		u.recorder.Record(ctx, r.Audit, auditUC.Entry{
			EntityType: audit.EntityCollateral, EntityID: a.AssignmentID, Action: "assign", ActorID: in.ActorID, After: a,
		})
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return a, nil
}

func (u *Usecase) Assignments(ctx context.Context, collateralID string) ([]domainCollateral.Assignment, error) {
	if _, err := u.collateral.GetCollateral(ctx, collateralID); err != nil {
		return nil, apperr.Wrap(notFound(err, ErrCollateralNotFound))
	}
	out, err := u.collateral.ListAssignments(ctx, collateralID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func notFound(err error, nf *apperr.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}
