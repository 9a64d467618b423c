package mysql

import (
	"credit-ledger/internal/domain/audit"
	"credit-ledger/internal/domain/collateral"
	"credit-ledger/internal/domain/exposure"
	"credit-ledger/internal/domain/facility"
	"credit-ledger/internal/domain/ledger"
	"credit-ledger/internal/domain/loan"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in creation order.
func Models() []any {
	return []any{
		&facility.Bank{},
		&facility.Facility{},
		&facility.CreditLine{},
		&loan.Loan{},
		&ledger.Transaction{},
		&audit.Log{},
		&collateral.Collateral{},
		&collateral.Assignment{},
		&exposure.Snapshot{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
