package mysql

import (
	"context"

	collateralDomain "credit-ledger/internal/domain/collateral"

	"gorm.io/gorm"
)

type CollateralRepository struct{ db *gorm.DB }

func NewCollateralRepository(db *gorm.DB) *CollateralRepository {
	return &CollateralRepository{db: db}
}

func (r *CollateralRepository) CreateCollateral(ctx context.Context, c *collateralDomain.Collateral) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CollateralRepository) GetCollateral(ctx context.Context, collateralID string) (*collateralDomain.Collateral, error) {
	var out collateralDomain.Collateral
	res := r.db.WithContext(ctx).
		Where("collateral_id = ?", collateralID).
		First(&out)
	return &out, res.Error
}

func (r *CollateralRepository) CreateAssignment(ctx context.Context, a *collateralDomain.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *CollateralRepository) ListAssignments(ctx context.Context, collateralID string) ([]collateralDomain.Assignment, error) {
	var out []collateralDomain.Assignment
	res := r.db.WithContext(ctx).
		Where("collateral_id = ?", collateralID).
		Order("effective_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}
