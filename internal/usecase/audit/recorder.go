package audit

import (
	"context"
	"encoding/json"

	domainAudit "credit-ledger/internal/domain/audit"
	"credit-ledger/internal/infrastructure/metrics"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Entry describes one mutation. Before is nil on create, After is nil on erase.
type Entry struct {
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	Reason     string
	Before     any
	After      any
}

// Recorder writes audit rows on a best-effort basis: a failed write is logged and
// counted, and never returned to the caller.
type Recorder struct {
	log     *zap.Logger
	metrics *metrics.LedgerMetrics
}

func NewRecorder(log *zap.Logger, m *metrics.LedgerMetrics) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{log: log, metrics: m}
}

// Record appends e through repo, which is normally bound to the caller's transaction.
// It reports whether the row was written.
func (r *Recorder) Record(ctx context.Context, repo domainAudit.Repository, e Entry) bool {
	row := &domainAudit.Log{
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		ActorID:    e.ActorID,
		Reason:     e.Reason,
	}
	var err error
	if row.Before, err = snapshot(e.Before); err == nil {
		row.After, err = snapshot(e.After)
	}
	if err == nil {
		err = repo.Append(ctx, row)
	}
	if err != nil {
		r.log.Error("audit write failed",
			zap.String("entity_type", e.EntityType),
			zap.String("entity_id", e.EntityID),
			zap.String("action", e.Action),
			zap.Error(err),
		)
		r.metrics.ObserveAuditFailure(e.EntityType)
		return false
	}
	return true
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
