package mysql

import (
	"context"

	facilityDomain "credit-ledger/internal/domain/facility"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FacilityRepository struct{ db *gorm.DB }

func NewFacilityRepository(db *gorm.DB) *FacilityRepository { return &FacilityRepository{db: db} }

func (r *FacilityRepository) CreateBank(ctx context.Context, b *facilityDomain.Bank) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *FacilityRepository) GetBank(ctx context.Context, bankID string) (*facilityDomain.Bank, error) {
	var out facilityDomain.Bank
	res := r.db.WithContext(ctx).Where("bank_id = ?", bankID).First(&out)
	return &out, res.Error
}

func (r *FacilityRepository) Create(ctx context.Context, f *facilityDomain.Facility) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FacilityRepository) Save(ctx context.Context, f *facilityDomain.Facility) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FacilityRepository) GetByFacilityID(ctx context.Context, facilityID string) (*facilityDomain.Facility, error) {
	var out facilityDomain.Facility
	res := r.db.WithContext(ctx).Where("facility_id = ?", facilityID).First(&out)
	return &out, res.Error
}

func (r *FacilityRepository) GetByFacilityIDForUpdate(ctx context.Context, facilityID string) (*facilityDomain.Facility, error) {
	var out facilityDomain.Facility
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("facility_id = ?", facilityID).
		First(&out)
	return &out, res.Error
}

func (r *FacilityRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]facilityDomain.Facility, error) {
	var out []facilityDomain.Facility
	res := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("bank_id ASC, facility_id ASC").
		Find(&out)
	return out, res.Error
}

func (r *FacilityRepository) ListOwners(ctx context.Context) ([]string, error) {
	var out []string
	res := r.db.WithContext(ctx).
		Model(&facilityDomain.Facility{}).
		Distinct("owner_user_id").
		Order("owner_user_id ASC").
		Pluck("owner_user_id", &out)
	return out, res.Error
}

func (r *FacilityRepository) CreateCreditLine(ctx context.Context, cl *facilityDomain.CreditLine) error {
	return r.db.WithContext(ctx).Create(cl).Error
}

func (r *FacilityRepository) GetCreditLine(ctx context.Context, creditLineID string) (*facilityDomain.CreditLine, error) {
	var out facilityDomain.CreditLine
	res := r.db.WithContext(ctx).Where("credit_line_id = ?", creditLineID).First(&out)
	return &out, res.Error
}

func (r *FacilityRepository) ListCreditLines(ctx context.Context, facilityID string) ([]facilityDomain.CreditLine, error) {
	var out []facilityDomain.CreditLine
	res := r.db.WithContext(ctx).Where("facility_id = ?", facilityID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *FacilityRepository) SaveCreditLine(ctx context.Context, cl *facilityDomain.CreditLine) error {
	return r.db.WithContext(ctx).Save(cl).Error
}
