package loan

import (
	"strings"
	"testing"
	"time"

	"credit-ledger/internal/domain/apperr"
	"credit-ledger/pkg/daycount"

	"github.com/shopspring/decimal"
)

func TestNext_AllowedTransitions(t *testing.T) {
	tests := []struct {
		from Status
		ev   Event
		want Status
	}{
		{StatusActive, EventRepay, StatusActive},
		{StatusActive, EventSettle, StatusSettled},
		{StatusActive, EventRevolve, StatusSettled},
		{StatusActive, EventCancel, StatusCancelled},
		{StatusSettled, EventReverse, StatusActive},
		{StatusCancelled, EventPurge, StatusErased},
	}
	for _, tt := range tests {
		got, err := Next(tt.from, tt.ev)
		if err != nil {
			t.Fatalf("%s --%s--> unexpected err: %v", tt.from, tt.ev, err)
		}
		if got != tt.want {
			t.Fatalf("%s --%s--> got %s want %s", tt.from, tt.ev, got, tt.want)
		}
	}
}

func TestNext_RejectedTransitions(t *testing.T) {
	tests := []struct {
		from Status
		ev   Event
	}{
		{StatusCancelled, EventSettle},
		{StatusSettled, EventSettle},
		{StatusActive, EventReverse},
		{StatusSettled, EventCancel},
		{StatusActive, EventPurge},
		{StatusSettled, EventPurge},
		{StatusSettled, EventRevolve},
		{StatusCancelled, EventRepay},
	}
	for _, tt := range tests {
		_, err := Next(tt.from, tt.ev)
		if err == nil {
			t.Fatalf("%s --%s--> expected error", tt.from, tt.ev)
		}
		if apperr.KindOf(err) != apperr.KindPrecondition {
			t.Fatalf("kind = %q, want precondition", apperr.KindOf(err))
		}
		if !strings.Contains(err.Error(), string(tt.from)) {
			t.Fatalf("message should name current state: %q", err.Error())
		}
	}
}

func TestInterestDue(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &Loan{
		Status:               StatusActive,
		OutstandingPrincipal: decimal.NewFromInt(1_000_000),
		BankRate:             decimal.RequireFromString("7.5"),
		InterestBasis:        daycount.Actual360,
		StartDate:            start,
	}
	if got := l.InterestDue(start.AddDate(0, 0, 30)); !got.Equal(decimal.NewFromInt(6250)) {
		t.Fatalf("due = %s", got)
	}

	last := start.AddDate(0, 0, 30)
	l.LastAccrualDate = &last
	l.InterestCarried = decimal.NewFromInt(100)
	if got := l.InterestDue(last); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("due at crystallisation date = %s", got)
	}

	l.Status = StatusSettled
	if got := l.InterestDue(last.AddDate(0, 0, 10)); !got.IsZero() {
		t.Fatalf("settled loans do not accrue, got %s", got)
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	mk := func(days int) *Loan {
		return &Loan{Status: StatusActive, DueDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)}
	}
	cases := map[int]Urgency{-1: UrgencyOverdue, 0: UrgencyCritical, 7: UrgencyCritical, 8: UrgencyWarning, 30: UrgencyWarning, 31: UrgencyNormal}
	for days, want := range cases {
		if got := Classify(mk(days), now, 30); got != want {
			t.Fatalf("due in %d days: got %q want %q", days, got, want)
		}
	}
	settled := mk(-5)
	settled.Status = StatusSettled
	if got := Classify(settled, now, 30); got != UrgencyNone {
		t.Fatalf("settled loans have no urgency, got %q", got)
	}
}
