package facility

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateBankInput struct {
	OwnerUserID string
	Name        string
	ActorID     string
}

type CreateFacilityInput struct {
	OwnerUserID       string
	BankID            string
	Name              string
	Type              string
	CreditLimit       decimal.Decimal
	Margin            decimal.Decimal
	StartDate         time.Time
	ExpiryDate        *time.Time
	RevolvingTracking bool
	MaxRevolvingDays  *int
	ActorID           string
}

type CreateCreditLineInput struct {
	FacilityID           string
	Name                 string
	CreditLimit          decimal.Decimal
	InterestRateOverride *decimal.Decimal
	ActorID              string
}

// UpdateMarginInput changes the margin used by future draws. Loans already drawn keep theirs.
type UpdateMarginInput struct {
	FacilityID string
	Margin     decimal.Decimal
	Reason     string
	ActorID    string
}
