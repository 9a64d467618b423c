package exposure

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Granularity string

const (
	Global        Granularity = "global"
	BankLevel     Granularity = "bank"
	FacilityLevel Granularity = "facility"
)

const keyDateLayout = "2006-01-02"

// Snapshot is one point-in-time rollup row. Exactly one of GlobalKey, BankKey and
// FacilityKey is set, and each carries its own unique index, so every granularity
// is unique per (user, date, scope) independently of the others.
type Snapshot struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID       string    `gorm:"size:32;index:idx_exposure_user_date" json:"user_id"`
	SnapshotDate time.Time `gorm:"type:date;index:idx_exposure_user_date" json:"snapshot_date"`
	BankID       *string   `gorm:"size:32" json:"bank_id,omitempty"`
	FacilityID   *string   `gorm:"size:32" json:"facility_id,omitempty"`

	TotalLimit         decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_limit"`
	TotalOutstanding   decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_outstanding"`
	UtilizationPercent decimal.Decimal `gorm:"type:decimal(8,4)" json:"utilization_percent"`
	ActiveLoanCount    int             `json:"active_loan_count"`

	GlobalKey   *string `gorm:"size:64;uniqueIndex:ux_exposure_global" json:"-"`
	BankKey     *string `gorm:"size:100;uniqueIndex:ux_exposure_bank" json:"-"`
	FacilityKey *string `gorm:"size:140;uniqueIndex:ux_exposure_facility" json:"-"`

	RunID     string    `gorm:"size:36" json:"run_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Snapshot) TableName() string { return "exposure_snapshots" }

func (s *Snapshot) Granularity() Granularity {
	switch {
	case s.BankID == nil && s.FacilityID == nil:
		return Global
	case s.FacilityID == nil:
		return BankLevel
	}
	return FacilityLevel
}

// KeyColumn names the scope-key column the row's uniqueness is enforced on.
func (s *Snapshot) KeyColumn() string {
	switch s.Granularity() {
	case Global:
		return "global_key"
	case BankLevel:
		return "bank_key"
	}
	return "facility_key"
}

// AssignKey fills the single scope key matching the row's granularity.
func (s *Snapshot) AssignKey() {
	k := s.UserID + "|" + s.SnapshotDate.Format(keyDateLayout)
	s.GlobalKey, s.BankKey, s.FacilityKey = nil, nil, nil
	switch s.Granularity() {
	case Global:
		s.GlobalKey = &k
	case BankLevel:
		k += "|" + *s.BankID
		s.BankKey = &k
	default:
		bank := ""
		if s.BankID != nil {
			bank = *s.BankID
		}
		k += "|" + bank + "|" + *s.FacilityID
		s.FacilityKey = &k
	}
}

type Repository interface {
	// Upsert inserts the row or overwrites the existing row with the same scope key.
	Upsert(ctx context.Context, s *Snapshot) error
	// DeleteStale removes rows for (user, date) not written by runID.
	DeleteStale(ctx context.Context, userID string, date time.Time, runID string) error
	ListByUserDate(ctx context.Context, userID string, date time.Time) ([]Snapshot, error)
}
