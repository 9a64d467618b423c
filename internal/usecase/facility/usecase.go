package facility

import (
	"context"
	"errors"
	"strings"
	"time"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/audit"
	domainFacility "credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/uow"
	auditUC "credit-ledger/internal/usecase/audit"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrBankNotFound       = apperr.NotFound("bank_not_found", "bank not found")
	ErrFacilityNotFound   = apperr.NotFound("facility_not_found", "facility not found")
	ErrCreditLineNotFound = apperr.NotFound("credit_line_not_found", "credit line not found")
)

var hundred = decimal.NewFromInt(100)

type Usecase struct {
	facilities domainFacility.Repository
	uow        uow.UnitOfWork
	recorder   *auditUC.Recorder
	log        *zap.Logger
}

type Option func(*Usecase)

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithRecorder(r *auditUC.Recorder) Option { return func(u *Usecase) { u.recorder = r } }

func NewUsecase(facilities domainFacility.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{facilities: facilities, uow: tx}
	for _, o := range opts {
		o(u)
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.recorder == nil {
		u.recorder = auditUC.NewRecorder(u.log, nil)
	}
	return u
}

func (u *Usecase) CreateBank(ctx context.Context, in CreateBankInput) (*domainFacility.Bank, error) {
	if strings.TrimSpace(in.OwnerUserID) == "" {
		return nil, apperr.Validation("owner_required", "owner user id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name_required", "bank name is required")
	}
	b := &domainFacility.Bank{BankID: id.NewID32(), OwnerUserID: in.OwnerUserID, Name: strings.TrimSpace(in.Name)}
	if err := u.facilities.CreateBank(ctx, b); err != nil {
		return nil, apperr.Wrap(err)
	}
	return b, nil
}

func (u *Usecase) GetBank(ctx context.Context, bankID string) (*domainFacility.Bank, error) {
	b, err := u.facilities.GetBank(ctx, bankID)
	if err != nil {
		return nil, apperr.Wrap(notFound(err, ErrBankNotFound))
	}
	return b, nil
}

func (u *Usecase) CreateFacility(ctx context.Context, in CreateFacilityInput) (*domainFacility.Facility, error) {
	typ := domainFacility.Type(in.Type)
	if !typ.Valid() {
		return nil, apperr.Validation("facility_type_invalid", "facility type %q is not supported", in.Type)
	}
	if in.CreditLimit.IsNegative() {
		return nil, apperr.Validation("limit_negative", "credit limit must not be negative")
	}
	if err := checkPercent("margin_out_of_bounds", "margin", in.Margin); err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() {
		return nil, apperr.Validation("start_date_missing", "start date is required")
	}
	start := daycount.Date(in.StartDate)
	var expiry *time.Time
	if in.ExpiryDate != nil {
		e := daycount.Date(*in.ExpiryDate)
		if e.Before(start) {
			return nil, apperr.Validation("expiry_before_start", "expiry date must not precede start date")
		}
		expiry = &e
	}
	if in.MaxRevolvingDays != nil && *in.MaxRevolvingDays <= 0 {
		return nil, apperr.Validation("revolving_period_invalid", "max revolving period must be a positive number of days")
	}

	var out *domainFacility.Facility
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Facilities.GetBank(ctx, in.BankID)
		if err != nil {
			return notFound(err, ErrBankNotFound)
		}
		if b.OwnerUserID != in.OwnerUserID {
			return apperr.Validation("bank_owner_mismatch", "bank %s belongs to another user", b.BankID)
		}
		f := &domainFacility.Facility{
			FacilityID:          id.NewID32(),
			OwnerUserID:         in.OwnerUserID,
			BankID:              b.BankID,
			Name:                in.Name,
			Type:                typ,
			CreditLimit:         in.CreditLimit.Round(2),
			CostOfFundingMargin: in.Margin,
			StartDate:           start,
			ExpiryDate:          expiry,
			IsActive:            true,
			RevolvingTracking:   in.RevolvingTracking,
			MaxRevolvingDays:    in.MaxRevolvingDays,
		}
		if err := r.Facilities.Create(ctx, f); err != nil {
			return err
		}
		u.recorder.Record(ctx, r.Audit, auditUC.Entry{
			EntityType: audit.EntityFacility, EntityID: f.FacilityID, Action: "create", ActorID: in.ActorID, After: f,
		})
		out = f
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

func (u *Usecase) GetFacility(ctx context.Context, facilityID string) (*domainFacility.Facility, error) {
	f, err := u.facilities.GetByFacilityID(ctx, facilityID)
	if err != nil {
		return nil, apperr.Wrap(notFound(err, ErrFacilityNotFound))
	}
	return f, nil
}

func (u *Usecase) ListFacilities(ctx context.Context, ownerUserID string) ([]domainFacility.Facility, error) {
	out, err := u.facilities.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

// CreateCreditLine carves a line out of a facility. The line limits of one facility
// may not add up to more than the facility limit.
func (u *Usecase) CreateCreditLine(ctx context.Context, in CreateCreditLineInput) (*domainFacility.CreditLine, error) {
	if !in.CreditLimit.IsPositive() {
		return nil, apperr.Validation("limit_not_positive", "credit line limit must be greater than zero")
	}
	if in.InterestRateOverride != nil {
		if err := checkPercent("rate_out_of_bounds", "interest rate override", *in.InterestRateOverride); err != nil {
			return nil, err
		}
	}

	var out *domainFacility.CreditLine
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Facilities.GetByFacilityIDForUpdate(ctx, in.FacilityID)
		if err != nil {
			return notFound(err, ErrFacilityNotFound)
		}
		lines, err := r.Facilities.ListCreditLines(ctx, f.FacilityID)
		if err != nil {
			return err
		}
		total := in.CreditLimit.Round(2)
		for _, l := range lines {
			total = total.Add(l.CreditLimit)
		}
		if total.GreaterThan(f.CreditLimit) {
			return apperr.Validation("credit_lines_exceed_facility",
				"credit line limits would total %s, above the facility limit %s",
				total.StringFixed(2), f.CreditLimit.StringFixed(2))
		}

		cl := &domainFacility.CreditLine{
			CreditLineID:         id.NewID32(),
			FacilityID:           f.FacilityID,
			Name:                 in.Name,
			CreditLimit:          in.CreditLimit.Round(2),
			AvailableLimit:       in.CreditLimit.Round(2),
			InterestRateOverride: in.InterestRateOverride,
			IsActive:             true,
		}
		if err := r.Facilities.CreateCreditLine(ctx, cl); err != nil {
			return err
		}
		u.recorder.Record(ctx, r.Audit, auditUC.Entry{
			EntityType: audit.EntityCreditLine, EntityID: cl.CreditLineID, Action: "create", ActorID: in.ActorID, After: cl,
		})
		out = cl
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

func (u *Usecase) GetCreditLine(ctx context.Context, creditLineID string) (*domainFacility.CreditLine, error) {
	cl, err := u.facilities.GetCreditLine(ctx, creditLineID)
	if err != nil {
		return nil, apperr.Wrap(notFound(err, ErrCreditLineNotFound))
	}
	return cl, nil
}

func (u *Usecase) ListCreditLines(ctx context.Context, facilityID string) ([]domainFacility.CreditLine, error) {
	if _, err := u.GetFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	out, err := u.facilities.ListCreditLines(ctx, facilityID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

// UpdateMargin only affects future draws; every loan froze its margin when drawn.
func (u *Usecase) UpdateMargin(ctx context.Context, in UpdateMarginInput) (*domainFacility.Facility, error) {
	if err := checkPercent("margin_out_of_bounds", "margin", in.Margin); err != nil {
		return nil, err
	}
	var out *domainFacility.Facility
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		f, err := r.Facilities.GetByFacilityIDForUpdate(ctx, in.FacilityID)
		if err != nil {
			return notFound(err, ErrFacilityNotFound)
		}
		before := *f
		f.CostOfFundingMargin = in.Margin
		if err := r.Facilities.Save(ctx, f); err != nil {
			return err
		}
		u.recorder.Record(ctx, r.Audit, auditUC.Entry{
			EntityType: audit.EntityFacility, EntityID: f.FacilityID, Action: "update_margin",
			ActorID: in.ActorID, Reason: in.Reason, Before: &before, After: f,
		})
		u.log.Info("facility margin updated",
			zap.String("facility_id", f.FacilityID),
			zap.String("from", before.CostOfFundingMargin.String()),
			zap.String("to", f.CostOfFundingMargin.String()))
		out = f
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

func checkPercent(code, what string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return apperr.Validation(code, "%s %s must be between 0 and 100", what, v.String())
	}
	return nil
}

func notFound(err error, nf *apperr.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}
