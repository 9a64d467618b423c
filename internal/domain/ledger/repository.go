package ledger

import "context"

type Repository interface {
	// Append inserts a new row; it never updates or deletes.
	Append(ctx context.Context, t *Transaction) error
	GetByIdempotencyKey(ctx context.Context, key string) (*Transaction, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	ListByLoanID(ctx context.Context, loanID string) ([]Transaction, error)
}
