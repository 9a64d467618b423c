package loan

import (
	"time"

	"credit-ledger/pkg/daycount"

	"github.com/shopspring/decimal"
)

type Loan struct {
	ID           uint64  `gorm:"primaryKey;column:id" json:"-"`
	LoanID       string  `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	FacilityID   string  `gorm:"size:32;index:idx_loans_facility_status" json:"facility_id"`
	CreditLineID *string `gorm:"size:32;index" json:"credit_line_id,omitempty"`
	BankID       string  `gorm:"size:32;index" json:"bank_id"`
	OwnerUserID  string  `gorm:"size:32;index" json:"owner_user_id"`

	Amount               decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	OutstandingPrincipal decimal.Decimal `gorm:"type:decimal(20,2)" json:"outstanding_principal"`
	// interest accrued up to LastAccrualDate that has not been paid yet
	InterestCarried decimal.Decimal `gorm:"type:decimal(20,6)" json:"interest_carried"`

	StartDate      time.Time  `gorm:"type:date" json:"start_date"`
	DueDate        time.Time  `gorm:"type:date;index" json:"due_date"`
	ChargesDueDate *time.Time `gorm:"type:date" json:"charges_due_date,omitempty"`

	BenchmarkRate   decimal.Decimal `gorm:"type:decimal(8,4)" json:"benchmark_rate"`
	BenchmarkTerm   string          `gorm:"size:16" json:"benchmark_term"`
	TermMonths      int             `json:"term_months"`
	Margin          decimal.Decimal `gorm:"type:decimal(8,4)" json:"margin"`
	BankRate        decimal.Decimal `gorm:"type:decimal(8,4)" json:"bank_rate"`
	InterestBasis   daycount.Basis  `gorm:"size:16" json:"interest_basis"`
	LastAccrualDate *time.Time      `gorm:"type:date" json:"last_accrual_date,omitempty"`

	Status        Status           `gorm:"size:16;index:idx_loans_facility_status;default:'active'" json:"status"`
	SettledDate   *time.Time       `gorm:"type:date" json:"settled_date,omitempty"`
	SettledAmount *decimal.Decimal `gorm:"type:decimal(20,2)" json:"settled_amount,omitempty"`
	// set when a repayment cleared the balance; a reversal puts that payment's allocation back
	PayoffTransactionID *string `gorm:"size:36" json:"payoff_transaction_id,omitempty"`

	ReversedAt     *time.Time `json:"reversed_at,omitempty"`
	ReversalReason string     `gorm:"type:text" json:"reversal_reason,omitempty"`
	ReversedBy     string     `gorm:"size:32" json:"reversed_by,omitempty"`

	ParentLoanID       *string `gorm:"size:32;index" json:"parent_loan_id,omitempty"`
	RevolvedIntoLoanID *string `gorm:"size:32" json:"revolved_into_loan_id,omitempty"`
	CycleNumber        int     `gorm:"default:1" json:"cycle_number"`

	IsDeleted   bool       `json:"is_deleted"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy string     `gorm:"size:32" json:"cancelled_by,omitempty"`

	Memo      string    `gorm:"type:text" json:"memo,omitempty"`
	CreatedBy string    `gorm:"size:32" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// AccrualOrigin is the date interest runs from.
func (l *Loan) AccrualOrigin() time.Time {
	if l.LastAccrualDate != nil {
		return *l.LastAccrualDate
	}
	return l.StartDate
}

// InterestDue is carried interest plus fresh accrual on the outstanding principal through asOf.
// Only active loans accrue.
func (l *Loan) InterestDue(asOf time.Time) decimal.Decimal {
	if l.Status != StatusActive {
		return decimal.Zero
	}
	fresh := daycount.AccruedSince(l.OutstandingPrincipal, l.BankRate, l.InterestBasis, l.LastAccrualDate, l.StartDate, asOf)
	return l.InterestCarried.Add(fresh)
}

// WasRevolved reports whether this cycle was closed out by a revolve.
func (l *Loan) WasRevolved() bool { return l.RevolvedIntoLoanID != nil }

// Snapshot is a detached copy used for audit before-images.
func (l *Loan) Snapshot() Loan { return *l }
