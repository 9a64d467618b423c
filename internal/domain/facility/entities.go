package facility

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeRevolving        Type = "revolving"
	TypeTerm             Type = "term"
	TypeBullet           Type = "bullet"
	TypeBridge           Type = "bridge"
	TypeWorkingCapital   Type = "working_capital"
	TypeNonCashGuarantee Type = "non_cash_guarantee"
)

func (t Type) Valid() bool {
	switch t {
	case TypeRevolving, TypeTerm, TypeBullet, TypeBridge, TypeWorkingCapital, TypeNonCashGuarantee:
		return true
	}
	return false
}

// Table: banks
type Bank struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	BankID      string    `gorm:"size:32;uniqueIndex:ux_banks_bank_id" json:"bank_id"`
	OwnerUserID string    `gorm:"size:32;index" json:"owner_user_id"`
	Name        string    `gorm:"size:128" json:"name"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Bank) TableName() string { return "banks" }

// Table: facilities
type Facility struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	FacilityID  string          `gorm:"size:32;uniqueIndex:ux_facilities_facility_id" json:"facility_id"`
	OwnerUserID string          `gorm:"size:32;index:idx_facilities_owner" json:"owner_user_id"`
	BankID      string          `gorm:"size:32;index" json:"bank_id"`
	Name        string          `gorm:"size:128" json:"name"`
	Type        Type            `gorm:"size:32" json:"type"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(20,2)" json:"credit_limit"`
	// percent over the benchmark; copied onto each loan cycle at draw/revolve time
	CostOfFundingMargin decimal.Decimal `gorm:"type:decimal(8,4)" json:"cost_of_funding_margin"`
	StartDate           time.Time       `gorm:"type:date" json:"start_date"`
	ExpiryDate          *time.Time      `gorm:"type:date" json:"expiry_date,omitempty"`
	IsActive            bool            `gorm:"default:true" json:"is_active"`
	RevolvingTracking   bool            `json:"revolving_tracking"`
	MaxRevolvingDays    *int            `json:"max_revolving_period_days,omitempty"`
	// set once, on the first draw against the facility
	InitialDrawdownDate *time.Time `gorm:"type:date" json:"initial_drawdown_date,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Facility) TableName() string { return "facilities" }

// ExpiredOn reports whether the facility has expired before day.
func (f *Facility) ExpiredOn(day time.Time) bool {
	return f.ExpiryDate != nil && day.After(*f.ExpiryDate)
}

// RevolvingDeadline returns the last date a revolved cycle may run to, if tracked.
func (f *Facility) RevolvingDeadline() (time.Time, bool) {
	if !f.RevolvingTracking || f.MaxRevolvingDays == nil || f.InitialDrawdownDate == nil {
		return time.Time{}, false
	}
	return f.InitialDrawdownDate.AddDate(0, 0, *f.MaxRevolvingDays), true
}

// Table: credit_lines
type CreditLine struct {
	ID                   uint64           `gorm:"primaryKey;column:id" json:"-"`
	CreditLineID         string           `gorm:"size:32;uniqueIndex:ux_credit_lines_credit_line_id" json:"credit_line_id"`
	FacilityID           string           `gorm:"size:32;index" json:"facility_id"`
	Name                 string           `gorm:"size:128" json:"name"`
	CreditLimit          decimal.Decimal  `gorm:"type:decimal(20,2)" json:"credit_limit"`
	AvailableLimit       decimal.Decimal  `gorm:"type:decimal(20,2)" json:"available_limit"`
	InterestRateOverride *decimal.Decimal `gorm:"type:decimal(8,4)" json:"interest_rate_override,omitempty"`
	IsActive             bool             `gorm:"default:true" json:"is_active"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CreditLine) TableName() string { return "credit_lines" }
