package audit

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

const (
	EntityLoan       = "loan"
	EntityFacility   = "facility"
	EntityCreditLine = "credit_line"
	EntityCollateral = "collateral_assignment"
)

// Table: audit_logs. Append-only.
type Log struct {
	ID         uint64         `gorm:"primaryKey;column:id" json:"id"`
	EntityType string         `gorm:"size:32;index:idx_audit_entity" json:"entity_type"`
	EntityID   string         `gorm:"size:36;index:idx_audit_entity" json:"entity_id"`
	Action     string         `gorm:"size:32" json:"action"`
	Before     datatypes.JSON `json:"before,omitempty"`
	After      datatypes.JSON `json:"after,omitempty"`
	ActorID    string         `gorm:"size:32" json:"actor_id"`
	Reason     string         `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Log) TableName() string { return "audit_logs" }

type Repository interface {
	Append(ctx context.Context, l *Log) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Log, error)
}
