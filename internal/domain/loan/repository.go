package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Row-locked read; only meaningful inside a transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	// Hard delete. The only path that removes a loan row.
	Delete(ctx context.Context, l *Loan) error

	ListActiveByFacility(ctx context.Context, facilityID string) ([]Loan, error)
	ListActiveByCreditLine(ctx context.Context, creditLineID string) ([]Loan, error)
	ListActiveByOwner(ctx context.Context, ownerUserID string) ([]Loan, error)
	CountByFacility(ctx context.Context, facilityID string) (int64, error)
}
