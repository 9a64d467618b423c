package loan

import (
	"context"
	"errors"
	"time"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/internal/domain/audit"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/ledger"
	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/uow"
	"credit-ledger/internal/infrastructure/metrics"
	auditUC "credit-ledger/internal/usecase/audit"
	"credit-ledger/internal/usecase/utilization"
	"credit-ledger/pkg/bizday"
	"credit-ledger/pkg/daycount"
	"credit-ledger/pkg/rate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDueSoonDays = 30

// Usecase owns the loan lifecycle. Every mutation runs inside uow.WithinLoanTx with the
// loan row locked; the plain repos are used for lock-free reads only.
type Usecase struct {
	loans      domainLoan.Repository
	facilities facility.Repository
	txns       ledger.Repository
	uow        uow.UnitOfWork

	quotes   rate.QuoteProvider
	recorder *auditUC.Recorder
	weekend  bizday.WeekendRule
	dueSoon  int
	log      *zap.Logger
	metrics  *metrics.LedgerMetrics
	now      func() time.Time
}

type Option func(*Usecase)

func WithQuotes(q rate.QuoteProvider) Option { return func(u *Usecase) { u.quotes = q } }
func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithMetrics(m *metrics.LedgerMetrics) Option { return func(u *Usecase) { u.metrics = m } }
func WithWeekendRule(w bizday.WeekendRule) Option { return func(u *Usecase) { u.weekend = w } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }
func WithDueSoonDays(days int) Option { return func(u *Usecase) { u.dueSoon = days } }
func WithRecorder(r *auditUC.Recorder) Option { return func(u *Usecase) { u.recorder = r } }

func NewUsecase(loans domainLoan.Repository, facilities facility.Repository, txns ledger.Repository, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		loans:      loans,
		facilities: facilities,
		txns:       txns,
		uow:        tx,
		weekend:    bizday.FriSat,
		dueSoon:    defaultDueSoonDays,
		now:        time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.recorder == nil {
		u.recorder = auditUC.NewRecorder(u.log, u.metrics)
	}
	return u
}

func (u *Usecase) today() time.Time { return daycount.Date(u.now()) }

// dateOr normalizes t to a calendar date, defaulting to today.
func (u *Usecase) dateOr(t time.Time) time.Time {
	if t.IsZero() {
		return u.today()
	}
	return daycount.Date(t)
}

func (u *Usecase) dto(l *domainLoan.Loan) LoanDTO {
	return LoanDTO{
		Loan:        l,
		InterestDue: l.InterestDue(u.today()).Round(2),
		Urgency:     domainLoan.Classify(l, u.now(), u.dueSoon),
	}
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Wrap(notFound(err, domainLoan.ErrNotFound))
	}
	d := u.dto(l)
	return &d, nil
}

// AccruedInterest previews interest due through asOf (today when nil). No lock is taken.
func (u *Usecase) AccruedInterest(ctx context.Context, loanID string, asOf *time.Time) (*AccruedDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Wrap(notFound(err, domainLoan.ErrNotFound))
	}
	at := u.today()
	if asOf != nil {
		at = daycount.Date(*asOf)
	}
	out := &AccruedDTO{LoanID: l.LoanID, AsOf: at, Carried: decimal.Zero, Fresh: decimal.Zero, Total: decimal.Zero}
	if l.Status != domainLoan.StatusActive {
		return out, nil
	}
	out.Carried = l.InterestCarried.Round(2)
	out.Total = l.InterestDue(at).Round(2)
	out.Fresh = out.Total.Sub(out.Carried)
	return out, nil
}

// Chain returns every cycle linked to loanID, oldest first.
func (u *Usecase) Chain(ctx context.Context, loanID string) ([]LoanDTO, error) {
	start, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Wrap(notFound(err, domainLoan.ErrNotFound))
	}
	seen := map[string]bool{start.LoanID: true}

	var back []*domainLoan.Loan
	for cur := start; cur.ParentLoanID != nil && !seen[*cur.ParentLoanID]; {
		p, err := u.loans.GetByLoanID(ctx, *cur.ParentLoanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// parent was purged; the chain starts here
			break
		}
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		seen[p.LoanID] = true
		back = append(back, p)
		cur = p
	}

	out := make([]LoanDTO, 0, len(back)+1)
	for i := len(back) - 1; i >= 0; i-- {
		out = append(out, u.dto(back[i]))
	}
	out = append(out, u.dto(start))

	for cur := start; cur.RevolvedIntoLoanID != nil && !seen[*cur.RevolvedIntoLoanID]; {
		n, err := u.loans.GetByLoanID(ctx, *cur.RevolvedIntoLoanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		seen[n.LoanID] = true
		out = append(out, u.dto(n))
		cur = n
	}
	return out, nil
}

// Transactions lists the ledger rows of a loan. Rows outlive a purged loan.
func (u *Usecase) Transactions(ctx context.Context, loanID string) ([]ledger.Transaction, error) {
	out, err := u.txns.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

// ---- helpers shared by the transitions ----

func notFound(err error, nf *apperr.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}

var (
	errFacilityNotFound   = apperr.NotFound("facility_not_found", "facility not found")
	errCreditLineNotFound = apperr.NotFound("credit_line_not_found", "credit line not found")
)

func newTxn(typ ledger.Type, amount decimal.Decimal, date time.Time, l *domainLoan.Loan, memo, actor string) *ledger.Transaction {
	loanID, facilityID := l.LoanID, l.FacilityID
	t := &ledger.Transaction{
		TransactionID: uuid.NewString(),
		Type:          typ,
		Amount:        amount.Round(2),
		TxnDate:       date,
		LoanID:        &loanID,
		FacilityID:    &facilityID,
		Memo:          memo,
		CreatedBy:     actor,
	}
	if l.BankID != "" {
		bankID := l.BankID
		t.BankID = &bankID
	}
	return t
}

func appendTxn(ctx context.Context, repo ledger.Repository, t *ledger.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return repo.Append(ctx, t)
}

// refreshLine recomputes a credit line's available limit from its active loans.
// It must run after the loan change is saved in the same transaction.
func refreshLine(ctx context.Context, r uow.Repos, creditLineID *string) (*utilization.Result, error) {
	if creditLineID == nil || *creditLineID == "" {
		return nil, nil
	}
	cl, err := r.Facilities.GetCreditLine(ctx, *creditLineID)
	if err != nil {
		return nil, notFound(err, errCreditLineNotFound)
	}
	res, err := utilization.ForCreditLine(ctx, r.Loans, cl)
	if err != nil {
		return nil, err
	}
	cl.AvailableLimit = res.Available
	if err := r.Facilities.SaveCreditLine(ctx, cl); err != nil {
		return nil, err
	}
	return &res, nil
}

func (u *Usecase) auditLoan(ctx context.Context, r uow.Repos, action, actor, reason string, before, after *domainLoan.Loan) {
	e := auditUC.Entry{EntityType: audit.EntityLoan, Action: action, ActorID: actor, Reason: reason}
	if before != nil {
		e.Before, e.EntityID = before, before.LoanID
	}
	if after != nil {
		e.After, e.EntityID = after, after.LoanID
	}
	u.recorder.Record(ctx, r.Audit, e)
}

// bankRate composes benchmark and margin; a credit-line override replaces the result.
func bankRate(benchmark, margin decimal.Decimal, line *facility.CreditLine) (decimal.Decimal, error) {
	if line != nil && line.InterestRateOverride != nil {
		return *line.InterestRateOverride, nil
	}
	r, err := rate.Compose(benchmark, margin)
	if err != nil {
		return decimal.Zero, apperr.Validation("rate_out_of_bounds", "%v", err)
	}
	return r, nil
}

// resolveBenchmark falls back to the static table when the live quote store is unreachable.
func (u *Usecase) resolveBenchmark(ctx context.Context, termMonths int, explicit *decimal.Decimal) (decimal.Decimal, rate.Source, error) {
	v, src, err := rate.Resolve(ctx, u.quotes, termMonths, explicit)
	if err != nil && !errors.Is(err, rate.ErrBadTerm) && u.quotes != nil {
		u.log.Warn("live benchmark quote unavailable", zap.Int("term_months", termMonths), zap.Error(err))
		v, src, err = rate.Resolve(ctx, nil, termMonths, explicit)
	}
	if err != nil {
		return decimal.Zero, "", apperr.Validation("term_invalid", "%v", err)
	}
	return v, src, nil
}

// schedule works out the term used for rate lookup and the business-day adjusted due date.
func (u *Usecase) schedule(start time.Time, due *time.Time, termMonths, termDays int) (int, time.Time, error) {
	if termMonths <= 0 && termDays > 0 {
		termMonths = (termDays + 15) / 30
		if termMonths < 1 {
			termMonths = 1
		}
	}
	if termMonths <= 0 {
		return 0, time.Time{}, apperr.Validation("term_invalid", "term must be a positive number of months or days")
	}
	var d time.Time
	switch {
	case due != nil:
		d = u.weekend.Adjust(daycount.Date(*due))
	case termDays > 0:
		d = u.weekend.AddDays(start, termDays)
	default:
		d = u.weekend.AddMonths(start, termMonths)
	}
	if d.Before(start) {
		return 0, time.Time{}, apperr.Validation("due_before_start", "due date %s is before start date %s",
			d.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return termMonths, d, nil
}
