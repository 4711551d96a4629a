package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var rateLimitRedisErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "f1_rate_limit_redis_errors_total",
	Help: "Total number of Redis failures that made the shared limiter fall back to local limiting",
})

// DefaultRedisKey is the key holding the shared quota's theoretical arrival time.
const DefaultRedisKey = RedisKeyPrefix + "tat"

const (
	redisOpTimeout    = 2 * time.Second
	redisMaxTxRetries = 10
)

var errContention = errors.New("rate limit state changed concurrently too many times")

// RedisLimiter shares one Quota between processes. It implements GCRA: Redis stores the
// theoretical arrival time (TAT) of the next request, and each Acquire advances it by one
// interval under WATCH, waiting for whatever exceeds the burst allowance.
//
// When Redis is unavailable the limiter logs a warning and falls back to an in-process
// Limiter for the same quota, so Acquire still never fails.
type RedisLimiter struct {
	redis    *redis.Client
	key      string
	quota    Quota
	clock    Clock
	fallback *Limiter
	logger   zerolog.Logger
}

// NewRedisLimiter creates a limiter sharing q through key in redisClient. An empty key uses
// DefaultRedisKey.
func NewRedisLimiter(redisClient *redis.Client, key string, q Quota, logger zerolog.Logger) (*RedisLimiter, error) {
	return NewRedisLimiterWithClock(redisClient, key, q, SystemClock(), logger)
}

// NewRedisLimiterWithClock is NewRedisLimiter with an explicit time source.
func NewRedisLimiterWithClock(redisClient *redis.Client, key string, q Quota, clock Clock, logger zerolog.Logger) (*RedisLimiter, error) {
	if redisClient == nil {
		return nil, errors.New("redis client is required")
	}
	fallback, err := NewLimiterWithClock(q, clock)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisLimiter{
		redis:    redisClient,
		key:      key,
		quota:    q,
		clock:    clock,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Acquire reserves a slot in the shared quota and sleeps until it is due.
func (l *RedisLimiter) Acquire() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	wait, err := l.Reserve(ctx)
	if err != nil {
		rateLimitRedisErrorsTotal.Inc()
		l.logger.Warn().
			Err(err).
			Str("key", l.key).
			Msg("Shared rate limit unavailable, falling back to local limiter")
		l.fallback.Acquire()
		return
	}

	rateLimitAcquiresTotal.WithLabelValues("redis").Inc()
	rateLimitWaitSeconds.Observe(wait.Seconds())

	if wait > 0 {
		l.logger.Debug().
			Dur("wait", wait).
			Msg("Waiting for shared rate limit")
		l.clock.Sleep(wait)
	}
}

// Reserve advances the shared TAT by one interval and returns how long the caller must
// wait before sending its request.
func (l *RedisLimiter) Reserve(ctx context.Context) (time.Duration, error) {
	interval := l.quota.Interval()
	allowance := time.Duration(l.quota.Burst) * interval

	var wait time.Duration
	txf := func(tx *redis.Tx) error {
		now := l.clock.Now()
		tat := now

		stored, err := tx.Get(ctx, l.key).Int64()
		switch {
		case err == nil:
			if t := time.UnixMicro(stored); t.After(now) {
				tat = t
			}
		case errors.Is(err, redis.Nil):
			// No request seen yet; the bucket is full.
		default:
			return fmt.Errorf("get tat: %w", err)
		}

		newTAT := tat.Add(interval)
		wait = max(newTAT.Add(-allowance).Sub(now), 0)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, l.key, newTAT.UnixMicro(), newTAT.Sub(now)+allowance)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxTxRetries; i++ {
		err := l.redis.Watch(ctx, txf, l.key)
		if err == nil {
			return wait, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return 0, fmt.Errorf("reserve shared rate limit: %w", err)
	}
	return 0, errContention
}

// Quota returns the quota l enforces.
func (l *RedisLimiter) Quota() Quota {
	return l.quota
}
