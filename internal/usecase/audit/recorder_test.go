package audit

import (
	"context"
	"encoding/json"
	"testing"

	domainAudit "credit-ledger/internal/domain/audit"
	"credit-ledger/internal/testutil/auditmock"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecord_WritesSnapshots(t *testing.T) {
	var got *domainAudit.Log
	repo := &auditmock.Repo{AppendFn: func(_ context.Context, l *domainAudit.Log) error {
		got = l
		return nil
	}}
	r := NewRecorder(nil, nil)

	ok := r.Record(context.Background(), repo, Entry{
		EntityType: domainAudit.EntityLoan,
		EntityID:   "L1",
		Action:     "settle",
		ActorID:    "u1",
		Before:     map[string]string{"status": "active"},
		After:      map[string]string{"status": "settled"},
	})
	if !ok || got == nil {
		t.Fatalf("expected audit row to be written")
	}
	var after map[string]string
	if err := json.Unmarshal(got.After, &after); err != nil || after["status"] != "settled" {
		t.Fatalf("after snapshot: %s err=%v", got.After, err)
	}
	if got.ActorID != "u1" || got.Action != "settle" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestRecord_NilBeforeStaysNull(t *testing.T) {
	var got *domainAudit.Log
	repo := &auditmock.Repo{AppendFn: func(_ context.Context, l *domainAudit.Log) error {
		got = l
		return nil
	}}
	NewRecorder(nil, nil).Record(context.Background(), repo, Entry{EntityType: "loan", EntityID: "L", Action: "draw", After: 1})
	if got.Before != nil {
		t.Fatalf("before should be nil, got %s", got.Before)
	}
}

func TestRecord_FailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := NewRecorder(zap.New(core), nil)

	ok := r.Record(context.Background(), auditmock.Failing(), Entry{EntityType: "loan", EntityID: "L2", Action: "cancel"})
	if ok {
		t.Fatalf("expected failure to be reported")
	}
	entries := logs.FilterMessage("audit write failed").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["entity_id"] != "L2" {
		t.Fatalf("missing entity_id field: %v", entries[0].ContextMap())
	}
}
