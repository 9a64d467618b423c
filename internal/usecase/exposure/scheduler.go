package exposure

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// OwnerLister yields every user that owns at least one facility.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]string, error)
}

type SchedulerConfig struct {
	Snapshots *Usecase
	Owners    OwnerLister
	RunHour   int
	RunMinute int
	Location  *time.Location
	Logger    *zap.Logger
}

// Scheduler writes the daily exposure snapshot of every owner at a fixed time of day.
type Scheduler struct {
	snapshots *Usecase
	owners    OwnerLister
	runHour   int
	runMinute int
	location  *time.Location
	log       *zap.Logger
	now       func() time.Time
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		snapshots: cfg.Snapshots,
		owners:    cfg.Owners,
		runHour:   clamp(cfg.RunHour, 23),
		runMinute: clamp(cfg.RunMinute, 59),
		location:  loc,
		log:       log,
		now:       time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.snapshots == nil || s.owners == nil {
		return
	}
	for {
		now := s.now().In(s.location)
		next := s.nextRun(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.RunOnce(ctx, next); err != nil {
				s.log.Error("exposure snapshot run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce snapshots every owner for date. One owner failing does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context, date time.Time) error {
	owners, err := s.owners.ListOwners(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, owner := range owners {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.snapshots.Upsert(ctx, owner, date); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.Info("exposure snapshot run finished",
		zap.Int("owners", len(owners)), zap.Int("failed", len(errs)), zap.String("date", date.Format(time.DateOnly)))
	return errors.Join(errs...)
}

func (s *Scheduler) nextRun(after time.Time) time.Time {
	target := time.Date(after.Year(), after.Month(), after.Day(), s.runHour, s.runMinute, 0, 0, s.location)
	if !target.After(after) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
