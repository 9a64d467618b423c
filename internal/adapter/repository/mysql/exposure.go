package mysql

import (
	"context"
	"time"

	"credit-ledger/internal/domain/exposure"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExposureRepository struct{ db *gorm.DB }

func NewExposureRepository(db *gorm.DB) *ExposureRepository { return &ExposureRepository{db: db} }

var snapshotUpdateColumns = []string{
	"total_limit", "total_outstanding", "utilization_percent", "active_loan_count", "run_id", "updated_at",
}

// Upsert keys on the scope column for the row's granularity.
func (r *ExposureRepository) Upsert(ctx context.Context, s *exposure.Snapshot) error {
	s.AssignKey()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: s.KeyColumn()}},
			DoUpdates: clause.AssignmentColumns(snapshotUpdateColumns),
		}).
		Create(s).Error
}

func (r *ExposureRepository) DeleteStale(ctx context.Context, userID string, date time.Time, runID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date = ? AND run_id <> ?", userID, date, runID).
		Delete(&exposure.Snapshot{}).Error
}

func (r *ExposureRepository) ListByUserDate(ctx context.Context, userID string, date time.Time) ([]exposure.Snapshot, error) {
	var out []exposure.Snapshot
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date = ?", userID, date).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
