// Package db holds the collector's Redis-backed click counters.
package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CounterTTL is how long a day's per-pattern counters are kept.
const CounterTTL = 48 * time.Hour

// ErrNilStore is returned when a RedisStore pointer is nil or uninitialized.
var ErrNilStore = errors.New("redis store is nil")

// RedisStore wraps a redis client for click counter operations.
type RedisStore struct {
	Client *redis.Client
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(ctx context.Context, addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(ctx).Err(); err != nil {
		_ = rs.Client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

// DailyKey returns the hash holding per-pattern click counts for the UTC day
// containing at.
func DailyKey(at time.Time) string {
	return "clicks:patterns:" + at.UTC().Format("2006-01-02")
}

// IncrementPatternClick adds one click for pattern to the counters of the day
// containing at and returns the new count. The day's hash expires after
// CounterTTL.
func (r *RedisStore) IncrementPatternClick(ctx context.Context, pattern string, at time.Time) (int64, error) {
	if r == nil || r.Client == nil {
		return 0, ErrNilStore
	}
	key := DailyKey(at)
	var incr *redis.IntCmd
	_, err := r.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, key, pattern, 1)
		p.Expire(ctx, key, CounterTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment pattern click: %w", err)
	}
	return incr.Val(), nil
}

// PatternClickCounts returns the per-pattern click counts for the day
// containing day. Patterns without clicks are absent.
func (r *RedisStore) PatternClickCounts(ctx context.Context, day time.Time) (map[string]int64, error) {
	if r == nil || r.Client == nil {
		return nil, ErrNilStore
	}
	raw, err := r.Client.HGetAll(ctx, DailyKey(day)).Result()
	if err != nil {
		return nil, fmt.Errorf("read pattern clicks: %w", err)
	}
	counts := make(map[string]int64, len(raw))
	for pattern, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			zap.L().Warn("invalid click counter", zap.String("pattern", pattern), zap.String("value", v))
			continue
		}
		counts[pattern] = n
	}
	return counts, nil
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrNilStore
	}
	return r.Client.Ping(ctx).Err()
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
