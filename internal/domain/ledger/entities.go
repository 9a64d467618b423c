package ledger

import (
	"time"

	"credit-ledger/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeDraw        Type = "draw"
	TypeRepayment   Type = "repayment"
	TypeFee         Type = "fee"
	TypeInterest    Type = "interest"
	TypeLimitChange Type = "limit_change"
	TypeVoid        Type = "void"
	TypeOther       Type = "other"
)

// AllocationTolerance absorbs rounding when allocation parts are summed.
var AllocationTolerance = decimal.RequireFromString("0.005")

// Allocation splits a transaction amount across interest, principal and fees.
type Allocation struct {
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Fees      decimal.Decimal `json:"fees"`
}

func (a Allocation) Total() decimal.Decimal { return a.Interest.Add(a.Principal).Add(a.Fees) }

// Validate checks the parts are non-negative and sum to amount.
func (a Allocation) Validate(amount decimal.Decimal) error {
	if a.Interest.IsNegative() || a.Principal.IsNegative() || a.Fees.IsNegative() {
		return apperr.Validation("allocation_negative", "allocation parts must not be negative")
	}
	if a.Total().Sub(amount).Abs().GreaterThan(AllocationTolerance) {
		return apperr.Validation("allocation_mismatch", "allocation total %s does not match amount %s",
			a.Total().StringFixed(2), amount.StringFixed(2))
	}
	return nil
}

// Transaction is an append-only ledger row. It outlives the loan it refers to.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	TransactionID string          `gorm:"size:36;uniqueIndex:ux_transactions_transaction_id" json:"transaction_id"`
	Type          Type            `gorm:"size:16;index" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	TxnDate       time.Time       `gorm:"type:date" json:"date"`

	InterestPortion  *decimal.Decimal `gorm:"type:decimal(20,2)" json:"interest_portion,omitempty"`
	PrincipalPortion *decimal.Decimal `gorm:"type:decimal(20,2)" json:"principal_portion,omitempty"`
	FeesPortion      *decimal.Decimal `gorm:"type:decimal(20,2)" json:"fees_portion,omitempty"`

	// unique when present; the index is what makes retries safe under concurrency
	IdempotencyKey *string `gorm:"size:128;uniqueIndex:ux_transactions_idempotency_key" json:"idempotency_key,omitempty"`

	LoanID     *string `gorm:"size:32;index" json:"loan_id,omitempty"`
	FacilityID *string `gorm:"size:32;index" json:"facility_id,omitempty"`
	BankID     *string `gorm:"size:32" json:"bank_id,omitempty"`

	Memo      string    `gorm:"type:text" json:"memo,omitempty"`
	CreatedBy string    `gorm:"size:32" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) SetAllocation(a Allocation) {
	i, p, f := a.Interest, a.Principal, a.Fees
	t.InterestPortion, t.PrincipalPortion, t.FeesPortion = &i, &p, &f
}

// Allocation returns the stored split, if the transaction has one.
func (t *Transaction) Allocation() (Allocation, bool) {
	if t.InterestPortion == nil || t.PrincipalPortion == nil || t.FeesPortion == nil {
		return Allocation{}, false
	}
	return Allocation{Interest: *t.InterestPortion, Principal: *t.PrincipalPortion, Fees: *t.FeesPortion}, true
}

// Validate is the writer-side check run before every append.
func (t *Transaction) Validate() error {
	if t.TransactionID == "" {
		return apperr.Validation("transaction_id_missing", "transaction id is required")
	}
	if t.Amount.IsNegative() {
		return apperr.Validation("amount_negative", "transaction amount must not be negative")
	}
	if t.Amount.IsZero() && t.Type != TypeOther && t.Type != TypeVoid {
		return apperr.Validation("amount_zero", "%s transaction amount must be positive", t.Type)
	}
	if t.IdempotencyKey != nil && *t.IdempotencyKey == "" {
		t.IdempotencyKey = nil
	}
	if a, ok := t.Allocation(); ok {
		return a.Validate(t.Amount)
	}
	return nil
}
