package daycount

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Basis is the day-count convention used to turn an annual rate into a daily one.
type Basis string

const (
	Actual360 Basis = "actual_360"
	Actual365 Basis = "actual_365"
)

func (b Basis) Valid() bool { return b == Actual360 || b == Actual365 }

// Denominator returns the number of days in a year under b.
func (b Basis) Denominator() int64 {
	if b == Actual365 {
		return 365
	}
	return 360
}

func ParseBasis(s string) (Basis, error) {
	b := Basis(s)
	if !b.Valid() {
		return "", fmt.Errorf("unsupported day-count basis %q", s)
	}
	return b, nil
}

var hundred = decimal.NewFromInt(100)

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from start to end. Negative when end is before start.
func DaysBetween(start, end time.Time) int64 {
	return dayNumber(end) - dayNumber(start)
}

// dayNumber counts days since the Unix epoch. A UTC midnight is an exact multiple of a
// day, and unlike time.Duration this does not saturate for ranges over ~292 years.
func dayNumber(t time.Time) int64 {
	return Date(t).Unix() / 86400
}

// Accrued returns principal * (ratePct/100) * days(start, end) / basis.
// A reversed range accrues nothing.
func Accrued(principal, ratePct decimal.Decimal, basis Basis, start, end time.Time) decimal.Decimal {
	days := DaysBetween(start, end)
	if days <= 0 || principal.Sign() <= 0 || ratePct.Sign() <= 0 {
		return decimal.Zero
	}
	num := principal.Mul(ratePct).Mul(decimal.NewFromInt(days))
	den := hundred.Mul(decimal.NewFromInt(basis.Denominator()))
	return num.Div(den)
}

// AccruedSince is Accrued with the origin defaulting to fallback when last is nil.
func AccruedSince(principal, ratePct decimal.Decimal, basis Basis, last *time.Time, fallback, end time.Time) decimal.Decimal {
	origin := fallback
	if last != nil {
		origin = *last
	}
	return Accrued(principal, ratePct, basis, origin, end)
}
