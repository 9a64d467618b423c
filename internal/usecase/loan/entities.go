package loan

import (
	"time"

	domainLoan "credit-ledger/internal/domain/loan"
	"credit-ledger/internal/domain/ledger"
	"credit-ledger/pkg/rate"

	"github.com/shopspring/decimal"
)

type DrawInput struct {
	FacilityID   string
	CreditLineID string
	Amount       decimal.Decimal
	StartDate    time.Time
	// DueDate wins over TermDays, which wins over TermMonths.
	DueDate        *time.Time
	TermMonths     int
	TermDays       int
	BenchmarkRate  *decimal.Decimal
	InterestBasis  string
	ChargesDueDate *time.Time
	Memo           string
	ActorID        string
}

type RepaymentInput struct {
	LoanID string
	Amount decimal.Decimal
	Date   time.Time
	// nil means the whole amount goes to principal
	Allocation     *ledger.Allocation
	IdempotencyKey string
	Memo           string
	ActorID        string
}

type SettleInput struct {
	LoanID  string
	Date    time.Time
	Amount  *decimal.Decimal
	Memo    string
	ActorID string
}

type ReverseInput struct {
	LoanID  string
	Reason  string
	ActorID string
}

type RevolveInput struct {
	LoanID        string
	TermMonths    int
	TermDays      int
	BenchmarkRate *decimal.Decimal
	// must equal the source cycle's margin when supplied
	Margin    *decimal.Decimal
	StartDate *time.Time
	DueDate   *time.Time
	Memo      string
	ActorID   string
}

type CancelInput struct {
	LoanID  string
	Reason  string
	ActorID string
}

type DeleteInput struct {
	LoanID  string
	ActorID string
}

// LoanDTO is a loan plus its read-time projections.
type LoanDTO struct {
	*domainLoan.Loan
	InterestDue decimal.Decimal    `json:"interest_due"`
	Urgency     domainLoan.Urgency `json:"urgency,omitempty"`
}

type DrawResult struct {
	Loan        LoanDTO             `json:"loan"`
	Transaction *ledger.Transaction `json:"transaction"`
	RateSource  rate.Source         `json:"benchmark_source"`
	Warnings    []string            `json:"warnings,omitempty"`
}

type RepaymentResult struct {
	Transaction *ledger.Transaction `json:"transaction"`
	Loan        *LoanDTO            `json:"loan,omitempty"`
	// true when the key matched an earlier write and nothing new was recorded
	Replayed bool `json:"replayed"`
}

type RevolveResult struct {
	Source      LoanDTO             `json:"source"`
	Successor   LoanDTO             `json:"successor"`
	Transaction *ledger.Transaction `json:"transaction"`
	RateSource  rate.Source         `json:"benchmark_source"`
}

type AccruedDTO struct {
	LoanID  string          `json:"loan_id"`
	AsOf    time.Time       `json:"as_of"`
	Carried decimal.Decimal `json:"carried"`
	Fresh   decimal.Decimal `json:"fresh"`
	Total   decimal.Decimal `json:"total"`
}
