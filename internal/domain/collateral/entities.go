package collateral

import (
	"context"
	"time"

	"credit-ledger/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

type PledgeType string

const (
	PledgeFirstLien  PledgeType = "first_lien"
	PledgeSecondLien PledgeType = "second_lien"
	PledgeBlanket    PledgeType = "blanket"
)

func (p PledgeType) Valid() bool {
	return p == PledgeFirstLien || p == PledgeSecondLien || p == PledgeBlanket
}

// Table: collaterals
type Collateral struct {
	ID           uint64           `gorm:"primaryKey;column:id" json:"-"`
	CollateralID string           `gorm:"size:32;uniqueIndex:ux_collaterals_collateral_id" json:"collateral_id"`
	OwnerUserID  string           `gorm:"size:32;index" json:"owner_user_id"`
	Description  string           `gorm:"type:text" json:"description"`
	Value        *decimal.Decimal `gorm:"type:decimal(20,2)" json:"value,omitempty"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (Collateral) TableName() string { return "collaterals" }

// Table: collateral_assignments
type Assignment struct {
	ID            uint64           `gorm:"primaryKey;column:id" json:"-"`
	AssignmentID  string           `gorm:"size:32;uniqueIndex:ux_collateral_assignments_assignment_id" json:"assignment_id"`
	CollateralID  string           `gorm:"size:32;index" json:"collateral_id"`
	FacilityID    *string          `gorm:"size:32;index" json:"facility_id,omitempty"`
	CreditLineID  *string          `gorm:"size:32;index" json:"credit_line_id,omitempty"`
	BankID        *string          `gorm:"size:32;index" json:"bank_id,omitempty"`
	PledgeType    PledgeType       `gorm:"size:16" json:"pledge_type"`
	PledgedValue  *decimal.Decimal `gorm:"type:decimal(20,2)" json:"pledged_value,omitempty"`
	AdvanceRate   *decimal.Decimal `gorm:"type:decimal(6,2)" json:"advance_rate,omitempty"`
	EffectiveDate time.Time        `gorm:"type:date" json:"effective_date"`
	ReleaseDate   *time.Time       `gorm:"type:date" json:"release_date,omitempty"`
	CreatedBy     string           `gorm:"size:32" json:"created_by"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (Assignment) TableName() string { return "collateral_assignments" }

// TargetCount counts the non-empty targets among facility, credit line and bank.
func (a *Assignment) TargetCount() int {
	n := 0
	for _, p := range []*string{a.FacilityID, a.CreditLineID, a.BankID} {
		if p != nil && *p != "" {
			n++
		}
	}
	return n
}

var hundred = decimal.NewFromInt(100)

// Validate enforces the exactly-one-target rule and the value ranges.
func (a *Assignment) Validate() error {
	if n := a.TargetCount(); n != 1 {
		return apperr.Validation("collateral_target_count",
			"collateral must be assigned to exactly one of facility, credit line or bank (got %d)", n)
	}
	if a.CollateralID == "" {
		return apperr.Validation("collateral_id_missing", "collateral id is required")
	}
	if !a.PledgeType.Valid() {
		return apperr.Validation("pledge_type_invalid", "pledge type %q is not one of first_lien, second_lien, blanket", a.PledgeType)
	}
	if a.PledgedValue != nil && a.PledgedValue.IsNegative() {
		return apperr.Validation("pledged_value_negative", "pledged value must not be negative")
	}
	if a.AdvanceRate != nil && (a.AdvanceRate.IsNegative() || a.AdvanceRate.GreaterThan(hundred)) {
		return apperr.Validation("advance_rate_range", "advance rate must be between 0 and 100")
	}
	if a.EffectiveDate.IsZero() {
		return apperr.Validation("effective_date_missing", "effective date is required")
	}
	if a.ReleaseDate != nil && a.ReleaseDate.Before(a.EffectiveDate) {
		return apperr.Validation("release_before_effective", "release date must not precede effective date")
	}
	return nil
}

type Repository interface {
	CreateCollateral(ctx context.Context, c *Collateral) error
	GetCollateral(ctx context.Context, collateralID string) (*Collateral, error)
	CreateAssignment(ctx context.Context, a *Assignment) error
	ListAssignments(ctx context.Context, collateralID string) ([]Assignment, error)
}
