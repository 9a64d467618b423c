package mysql

import (
	"context"

	"credit-ledger/internal/domain/audit"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

// Append runs in a nested transaction. Inside an outer transaction gorm turns this into
// a savepoint, so a failed audit insert rolls back alone and leaves the caller's tx usable.
func (r *AuditRepository) Append(ctx context.Context, l *audit.Log) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(l).Error
	})
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]audit.Log, error) {
	var out []audit.Log
	res := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
