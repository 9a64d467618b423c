package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	openAttempts = 3
	pingTimeout  = 2 * time.Second
)

// OpenRedis connects and pings, retrying with a linear backoff while the server comes up.
// ctx bounds the whole attempt.
func OpenRedis(ctx context.Context, addr string, db int, log *zap.Logger) (*redis.Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	for attempt := 1; ; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := r.Ping(pctx).Err()
		cancel()
		if err == nil {
			log.Info("redis: connected", zap.String("addr", addr), zap.Int("db", db))
			return r, nil
		}
		if attempt == openAttempts {
			_ = r.Close()
			return nil, fmt.Errorf("redis %s: %w", addr, err)
		}
		log.Warn("redis: ping failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			_ = r.Close()
			return nil, fmt.Errorf("redis %s: %w", addr, ctx.Err())
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		}
	}
}
