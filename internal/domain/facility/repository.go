package facility

import "context"

type Repository interface {
	CreateBank(ctx context.Context, b *Bank) error
	GetBank(ctx context.Context, bankID string) (*Bank, error)

	Create(ctx context.Context, f *Facility) error
	GetByFacilityID(ctx context.Context, facilityID string) (*Facility, error)
	// Row-locked read; only meaningful inside a transaction.
	GetByFacilityIDForUpdate(ctx context.Context, facilityID string) (*Facility, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Facility, error)
	ListOwners(ctx context.Context) ([]string, error)
	Save(ctx context.Context, f *Facility) error

	CreateCreditLine(ctx context.Context, cl *CreditLine) error
	GetCreditLine(ctx context.Context, creditLineID string) (*CreditLine, error)
	ListCreditLines(ctx context.Context, facilityID string) ([]CreditLine, error)
	SaveCreditLine(ctx context.Context, cl *CreditLine) error
}
