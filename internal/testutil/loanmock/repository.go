package loanmock

import (
	"context"

	domain "credit-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled, unset writers succeed, unset lists are empty.
type Repo struct {
	CreateFn                 func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn            func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn   func(ctx context.Context, loanID string) (*domain.Loan, error)
	SaveFn                   func(ctx context.Context, l *domain.Loan) error
	DeleteFn                 func(ctx context.Context, l *domain.Loan) error
	ListActiveByFacilityFn   func(ctx context.Context, facilityID string) ([]domain.Loan, error)
	ListActiveByCreditLineFn func(ctx context.Context, creditLineID string) ([]domain.Loan, error)
	ListActiveByOwnerFn      func(ctx context.Context, ownerUserID string) ([]domain.Loan, error)
	CountByFacilityFn        func(ctx context.Context, facilityID string) (int64, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, l *domain.Loan) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListActiveByFacility(ctx context.Context, facilityID string) ([]domain.Loan, error) {
	if m.ListActiveByFacilityFn != nil {
		return m.ListActiveByFacilityFn(ctx, facilityID)
	}
	return nil, nil
}

func (m *Repo) ListActiveByCreditLine(ctx context.Context, creditLineID string) ([]domain.Loan, error) {
	if m.ListActiveByCreditLineFn != nil {
		return m.ListActiveByCreditLineFn(ctx, creditLineID)
	}
	return nil, nil
}

func (m *Repo) ListActiveByOwner(ctx context.Context, ownerUserID string) ([]domain.Loan, error) {
	if m.ListActiveByOwnerFn != nil {
		return m.ListActiveByOwnerFn(ctx, ownerUserID)
	}
	return nil, nil
}

func (m *Repo) CountByFacility(ctx context.Context, facilityID string) (int64, error) {
	if m.CountByFacilityFn != nil {
		return m.CountByFacilityFn(ctx, facilityID)
	}
	return 0, nil
}
