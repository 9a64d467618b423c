package loan

import (
	"time"

	"credit-ledger/internal/domain/apperr"
)

// Status is the persisted lifecycle state. Overdue is derived, see Urgency.
type Status string

const (
	StatusActive    Status = "active"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
	// never stored: the row is gone once a loan reaches it
	StatusErased Status = "erased"
)

type Event string

const (
	EventRepay   Event = "repay"
	EventSettle  Event = "settle"
	EventReverse Event = "reverse"
	EventRevolve Event = "revolve"
	EventCancel  Event = "cancel"
	EventPurge   Event = "purge"
)

// transitions is the whole lifecycle. A pair missing here is an invalid transition.
var transitions = map[Status]map[Event]Status{
	StatusActive: {
		EventRepay:   StatusActive,
		EventSettle:  StatusSettled,
		EventRevolve: StatusSettled,
		EventCancel:  StatusCancelled,
	},
	StatusSettled: {
		EventReverse: StatusActive,
	},
	StatusCancelled: {
		EventPurge: StatusErased,
	},
}

var ErrNotFound = apperr.NotFound("loan_not_found", "loan not found")

// Next returns the state reached by applying ev to s, or a precondition error naming
// the state the loan must be in.
func Next(s Status, ev Event) (Status, error) {
	if to, ok := transitions[s][ev]; ok {
		return to, nil
	}
	return "", apperr.Precondition("invalid_transition_"+string(ev),
		"cannot %s a loan that is %s (requires %s)", ev, s, requiredState(ev))
}

func requiredState(ev Event) Status {
	for from, evs := range transitions {
		if _, ok := evs[ev]; ok {
			return from
		}
	}
	return ""
}

// Urgency is a read-time projection over the due date, never persisted.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyNormal   Urgency = "normal"
	UrgencyNone     Urgency = ""
)

const criticalDays = 7

// Classify buckets an active loan by how close its due date is to now.
func Classify(l *Loan, now time.Time, warningDays int) Urgency {
	if l.Status != StatusActive {
		return UrgencyNone
	}
	today := dateOf(now)
	due := dateOf(l.DueDate)
	days := int(due.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= criticalDays:
		return UrgencyCritical
	case days <= warningDays:
		return UrgencyWarning
	}
	return UrgencyNormal
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
