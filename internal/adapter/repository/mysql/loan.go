package mysql

import (
	"context"

	loanDomain "credit-ledger/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", l.LoanID).Delete(&loanDomain.Loan{}).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListActiveByFacility(ctx context.Context, facilityID string) ([]loanDomain.Loan, error) {
	return r.listActive(ctx, "facility_id = ?", facilityID)
}

func (r *LoanRepository) ListActiveByCreditLine(ctx context.Context, creditLineID string) ([]loanDomain.Loan, error) {
	return r.listActive(ctx, "credit_line_id = ?", creditLineID)
}

func (r *LoanRepository) ListActiveByOwner(ctx context.Context, ownerUserID string) ([]loanDomain.Loan, error) {
	return r.listActive(ctx, "owner_user_id = ?", ownerUserID)
}

func (r *LoanRepository) listActive(ctx context.Context, cond string, arg any) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where(cond, arg).
		Where("status = ? AND is_deleted = ?", loanDomain.StatusActive, false).
		Order("start_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) CountByFacility(ctx context.Context, facilityID string) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Where("facility_id = ?", facilityID).Count(&n)
	return n, res.Error
}
