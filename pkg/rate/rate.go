package rate

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrOutOfBounds = errors.New("rate out of bounds")
	ErrBadTerm     = errors.New("term must be a positive number of months")

	maxRate = decimal.NewFromInt(100)
)

// Source tells where a benchmark quote came from.
type Source string

const (
	SourceCaller   Source = "caller"
	SourceLive     Source = "live"
	SourceStandard Source = "standard"
	SourceEstimate Source = "estimate"
)

// standardBenchmarks is a UI convenience table, not an authoritative fixing.
var standardBenchmarks = map[int]decimal.Decimal{
	1:  decimal.RequireFromString("5.45"),
	2:  decimal.RequireFromString("5.50"),
	3:  decimal.RequireFromString("5.55"),
	6:  decimal.RequireFromString("5.60"),
	12: decimal.RequireFromString("5.65"),
}

var longTermPremium = decimal.RequireFromString("0.25")

func IsStandardTerm(months int) bool {
	_, ok := standardBenchmarks[months]
	return ok
}

func TermLabel(months int) string { return fmt.Sprintf("%dM", months) }

// StandardBenchmark returns the reference benchmark for a standard term.
func StandardBenchmark(months int) (decimal.Decimal, bool) {
	v, ok := standardBenchmarks[months]
	return v, ok
}

// EstimateBenchmark tiers a custom term into the nearest standard bucket.
func EstimateBenchmark(months int) (decimal.Decimal, error) {
	switch {
	case months <= 0:
		return decimal.Zero, ErrBadTerm
	case months <= 1:
		return standardBenchmarks[1], nil
	case months <= 3:
		return standardBenchmarks[3], nil
	case months <= 6:
		return standardBenchmarks[6], nil
	case months <= 12:
		return standardBenchmarks[12], nil
	default:
		return standardBenchmarks[12].Add(longTermPremium), nil
	}
}

// Compose returns benchmark + margin. Inputs and result must lie in [0, 100];
// out-of-range values are rejected, never clamped.
func Compose(benchmark, margin decimal.Decimal) (decimal.Decimal, error) {
	if benchmark.IsNegative() || benchmark.GreaterThan(maxRate) {
		return decimal.Zero, fmt.Errorf("%w: benchmark %s", ErrOutOfBounds, benchmark)
	}
	if margin.IsNegative() || margin.GreaterThan(maxRate) {
		return decimal.Zero, fmt.Errorf("%w: margin %s", ErrOutOfBounds, margin)
	}
	r := benchmark.Add(margin)
	if r.GreaterThan(maxRate) {
		return decimal.Zero, fmt.Errorf("%w: bank rate %s", ErrOutOfBounds, r)
	}
	return r, nil
}

// QuoteProvider supplies the current live benchmark for a term, if one is known.
type QuoteProvider interface {
	Quote(ctx context.Context, termMonths int) (decimal.Decimal, bool, error)
}

// Resolve picks the benchmark for a draw: an explicit caller value wins, then a live
// quote, then the standard table, then the custom-term estimate.
func Resolve(ctx context.Context, qp QuoteProvider, termMonths int, explicit *decimal.Decimal) (decimal.Decimal, Source, error) {
	if explicit != nil {
		return *explicit, SourceCaller, nil
	}
	if termMonths <= 0 {
		return decimal.Zero, "", ErrBadTerm
	}
	if qp != nil {
		v, ok, err := qp.Quote(ctx, termMonths)
		if err != nil {
			return decimal.Zero, "", err
		}
		if ok {
			return v, SourceLive, nil
		}
	}
	if v, ok := StandardBenchmark(termMonths); ok {
		return v, SourceStandard, nil
	}
	v, err := EstimateBenchmark(termMonths)
	return v, SourceEstimate, err
}
