package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const quoteKeyPrefix = "rate:benchmark:"

// QuoteStore keeps live benchmark quotes per tenor. It satisfies rate.QuoteProvider.
type QuoteStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteStore with ttl <= 0 keeps quotes until overwritten.
func NewQuoteStore(rdb *redis.Client, ttl time.Duration) *QuoteStore {
	return &QuoteStore{rdb: rdb, ttl: ttl}
}

func quoteKey(termMonths int) string { return fmt.Sprintf("%s%dM", quoteKeyPrefix, termMonths) }

func (s *QuoteStore) Set(ctx context.Context, termMonths int, pct decimal.Decimal) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, quoteKey(termMonths), pct.String(), ttl).Err()
}

// Quote returns ok=false when no live quote is stored for the tenor.
func (s *QuoteStore) Quote(ctx context.Context, termMonths int) (decimal.Decimal, bool, error) {
	raw, err := s.rdb.Get(ctx, quoteKey(termMonths)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("quote %s: %w", quoteKey(termMonths), err)
	}
	return v, true, nil
}
