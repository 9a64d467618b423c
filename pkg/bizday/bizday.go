// Package bizday rolls dates forward onto business days.
package bizday

import (
	"fmt"
	"time"
)

// WeekendRule lists the weekdays that are not business days.
type WeekendRule struct {
	name    string
	weekend [7]bool
}

var (
	// FriSat is the operative Gulf weekend.
	FriSat = NewWeekendRule("fri_sat", time.Friday, time.Saturday)
	SatSun = NewWeekendRule("sat_sun", time.Saturday, time.Sunday)
)

func NewWeekendRule(name string, days ...time.Weekday) WeekendRule {
	r := WeekendRule{name: name}
	for _, d := range days {
		r.weekend[d] = true
	}
	return r
}

func ParseWeekendRule(s string) (WeekendRule, error) {
	switch s {
	case "", "fri_sat":
		return FriSat, nil
	case "sat_sun":
		return SatSun, nil
	}
	return WeekendRule{}, fmt.Errorf("unknown weekend rule %q", s)
}

func (r WeekendRule) String() string { return r.name }

func (r WeekendRule) IsBusinessDay(t time.Time) bool { return !r.weekend[t.Weekday()] }

// Adjust returns t if it is a business day, otherwise the next one. Never moves backward.
func (r WeekendRule) Adjust(t time.Time) time.Time {
	// guard against a rule that marks every day as weekend
	for i := 0; i < 7 && !r.IsBusinessDay(t); i++ {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddMonths adds n calendar months, clamping to the last day of the target month,
// then adjusts onto a business day.
func (r WeekendRule) AddMonths(start time.Time, n int) time.Time {
	return r.Adjust(addMonthsClamped(start, n))
}

// AddDays adds n calendar days and adjusts onto a business day.
func (r WeekendRule) AddDays(start time.Time, n int) time.Time {
	return r.Adjust(start.AddDate(0, 0, n))
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
