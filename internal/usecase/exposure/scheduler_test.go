package exposure

import (
	"context"
	"errors"
	"testing"
	"time"
)

type ownersFunc func(ctx context.Context) ([]string, error)

func (f ownersFunc) ListOwners(ctx context.Context) ([]string, error) { return f(ctx) }

func TestScheduler_NextRun(t *testing.T) {
	s := NewScheduler(SchedulerConfig{RunHour: 1, RunMinute: 30})
	before := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if got := s.nextRun(before); !got.Equal(time.Date(2025, 8, 1, 1, 30, 0, 0, time.UTC)) {
		t.Fatalf("same-day run = %v", got)
	}
	after := time.Date(2025, 8, 1, 1, 30, 0, 0, time.UTC)
	if got := s.nextRun(after); !got.Equal(time.Date(2025, 8, 2, 1, 30, 0, 0, time.UTC)) {
		t.Fatalf("next-day run = %v", got)
	}

	clamped := NewScheduler(SchedulerConfig{RunHour: 40, RunMinute: -5})
	if clamped.runHour != 23 || clamped.runMinute != 0 {
		t.Fatalf("clamp: %d:%d", clamped.runHour, clamped.runMinute)
	}
}

func TestScheduler_RunOnceSnapshotsEveryOwner(t *testing.T) {
	w := seed(t)
	ctx := context.Background()
	s := NewScheduler(SchedulerConfig{
		Snapshots: w.uc,
		Owners:    ownersFunc(func(context.Context) ([]string, error) { return []string{"owner1", "owner2"}, nil }),
	})
	if err := s.RunOnce(ctx, day("2025-08-01")); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if rows, _ := w.uc.List(ctx, "owner1", day("2025-08-01")); len(rows) != 4 {
		t.Fatalf("owner1 rows = %d", len(rows))
	}
	if rows, _ := w.uc.List(ctx, "owner2", day("2025-08-01")); len(rows) != 1 {
		t.Fatalf("owner2 rows = %d", len(rows))
	}

	boom := errors.New("boom")
	failing := NewScheduler(SchedulerConfig{
		Snapshots: w.uc,
		Owners:    ownersFunc(func(context.Context) ([]string, error) { return nil, boom }),
	})
	if err := failing.RunOnce(ctx, day("2025-08-01")); !errors.Is(err, boom) {
		t.Fatalf("owner listing error not returned: %v", err)
	}
}

func TestScheduler_StartStopsOnCancel(t *testing.T) {
	w := seed(t)
	s := NewScheduler(SchedulerConfig{
		Snapshots: w.uc,
		Owners:    ownersFunc(func(context.Context) ([]string, error) { return nil, nil }),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
