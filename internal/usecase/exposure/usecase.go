package exposure

import (
	"context"
	"sort"
	"strings"
	"time"

	"credit-ledger/internal/domain/apperr"
	domainExposure "credit-ledger/internal/domain/exposure"
	domainFacility "credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"
	"credit-ledger/internal/infrastructure/metrics"
	"credit-ledger/internal/usecase/utilization"
	"credit-ledger/pkg/daycount"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Usecase rolls a user's facilities and active loans up into exposure snapshot rows.
type Usecase struct {
	snapshots domainExposure.Repository
	uow       uow.UnitOfWork
	log       *zap.Logger
	metrics   *metrics.LedgerMetrics
}

func NewUsecase(snapshots domainExposure.Repository, tx uow.UnitOfWork, log *zap.Logger, m *metrics.LedgerMetrics) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{snapshots: snapshots, uow: tx, log: log, metrics: m}
}

// Upsert recomputes the (user, date) snapshot: one global row, one row per bank and one
// per facility. Rows from an earlier run of the same date are overwritten in place, and
// any that no longer have a scope are removed.
func (u *Usecase) Upsert(ctx context.Context, userID string, date time.Time) (rows []domainExposure.Snapshot, err error) {
	defer func() { u.metrics.ObserveSnapshotRun(err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user_required", "user id is required")
	}
	if date.IsZero() {
		return nil, apperr.Validation("date_required", "snapshot date is required")
	}
	date = daycount.Date(date)
	runID := uuid.NewString()

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		facilities, err := r.Facilities.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		loans, err := r.Loans.ListActiveByOwner(ctx, userID)
		if err != nil {
			return err
		}

		rows = aggregate(userID, date, facilities, loans)
		for i := range rows {
			rows[i].RunID = runID
			if err := r.Exposure.Upsert(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return r.Exposure.DeleteStale(ctx, userID, date, runID)
	})
	if err != nil {
		u.log.Error("exposure snapshot failed", zap.String("user_id", userID),
			zap.String("date", date.Format(time.DateOnly)), zap.Error(err))
		return nil, apperr.Wrap(err)
	}

	counts := map[domainExposure.Granularity]int{}
	for i := range rows {
		counts[rows[i].Granularity()]++
	}
	for _, g := range []domainExposure.Granularity{domainExposure.Global, domainExposure.BankLevel, domainExposure.FacilityLevel} {
		u.metrics.SetSnapshotRows(string(g), counts[g])
	}
	u.log.Info("exposure snapshot written", zap.String("user_id", userID),
		zap.String("date", date.Format(time.DateOnly)), zap.String("run_id", runID), zap.Int("rows", len(rows)))
	return rows, nil
}

func (u *Usecase) List(ctx context.Context, userID string, date time.Time) ([]domainExposure.Snapshot, error) {
	out, err := u.snapshots.ListByUserDate(ctx, userID, daycount.Date(date))
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

// aggregate is pure: facilities that have not started by date, and loans that start after
// it, are left out.
func aggregate(userID string, date time.Time, facilities []domainFacility.Facility, loans []loan.Loan) []domainExposure.Snapshot {
	inScope := map[string]*domainFacility.Facility{}
	var bankOrder, facilityOrder []string
	bankLimit := map[string]decimal.Decimal{}
	for i := range facilities {
		f := &facilities[i]
		if !f.IsActive || f.StartDate.After(date) {
			continue
		}
		inScope[f.FacilityID] = f
		facilityOrder = append(facilityOrder, f.FacilityID)
		if _, ok := bankLimit[f.BankID]; !ok {
			bankOrder = append(bankOrder, f.BankID)
		}
		bankLimit[f.BankID] = bankLimit[f.BankID].Add(f.CreditLimit)
	}
	sort.Strings(bankOrder)

	var all []loan.Loan
	byBank := map[string][]loan.Loan{}
	byFacility := map[string][]loan.Loan{}
	for _, l := range loans {
		f, ok := inScope[l.FacilityID]
		if !ok || l.StartDate.After(date) {
			continue
		}
		all = append(all, l)
		byBank[f.BankID] = append(byBank[f.BankID], l)
		byFacility[f.FacilityID] = append(byFacility[f.FacilityID], l)
	}

	total := decimal.Zero
	for _, lim := range bankLimit {
		total = total.Add(lim)
	}

	rows := []domainExposure.Snapshot{row(userID, date, nil, nil, utilization.Calculate(total, all))}
	for _, b := range bankOrder {
		bank := b
		rows = append(rows, row(userID, date, &bank, nil, utilization.Calculate(bankLimit[b], byBank[b])))
	}
	for _, fid := range facilityOrder {
		f := inScope[fid]
		bank, facilityID := f.BankID, f.FacilityID
		rows = append(rows, row(userID, date, &bank, &facilityID, utilization.Calculate(f.CreditLimit, byFacility[fid])))
	}
	return rows
}

func row(userID string, date time.Time, bankID, facilityID *string, r utilization.Result) domainExposure.Snapshot {
	return domainExposure.Snapshot{
		UserID:             userID,
		SnapshotDate:       date,
		BankID:             bankID,
		FacilityID:         facilityID,
		TotalLimit:         r.Limit,
		TotalOutstanding:   r.Used,
		UtilizationPercent: r.Percent,
		ActiveLoanCount:    r.ActiveLoans,
	}
}
