package mysql

import (
	"context"

	"credit-ledger/internal/domain/ledger"

	"gorm.io/gorm"
)

type TransactionRepository struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Append inserts only. A duplicate idempotency key surfaces as gorm.ErrDuplicatedKey
// when the connection is opened with TranslateError.
func (r *TransactionRepository) Append(ctx context.Context, t *ledger.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*ledger.Transaction, error) {
	var out ledger.Transaction
	res := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&out)
	return &out, res.Error
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*ledger.Transaction, error) {
	var out ledger.Transaction
	res := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&out)
	return &out, res.Error
}

func (r *TransactionRepository) ListByLoanID(ctx context.Context, loanID string) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("id ASC").Find(&out)
	return out, res.Error
}
