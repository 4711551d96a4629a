package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "f1_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the initial request.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff is the pause before the first retry.
	Backoff time.Duration

	// BackoffMultiplier grows the pause after every retry. Zero or one keeps it fixed.
	BackoffMultiplier float64

	// MaxBackoff caps the pause when BackoffMultiplier > 1. Zero means no cap.
	MaxBackoff time.Duration

	// Sleep replaces the context-aware timer wait, for tests.
	Sleep func(time.Duration)
}

// DefaultRetryConfig returns the default retry configuration: two retries one second apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Backoff:     1 * time.Second,
	}
}

func (c RetryConfig) attempts() int {
	return max(c.MaxAttempts, 1)
}

func (c RetryConfig) next(backoff time.Duration) time.Duration {
	if c.BackoffMultiplier <= 1 {
		return backoff
	}
	backoff = time.Duration(float64(backoff) * c.BackoffMultiplier)
	if c.MaxBackoff > 0 && backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

func (c RetryConfig) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		c.Sleep(d)
		return ctx.Err()
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry calls op until it succeeds, fails with an error that is not a retryable
// *TransportError, or runs out of attempts. Exhaustion returns a *RetriesExhaustedError
// carrying the last transport error. ctx is checked between attempts.
func Retry[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	var zero T
	attempts := cfg.attempts()
	backoff := cfg.Backoff

	var last *TransportError
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return v, nil
		}

		var te *TransportError
		if !errors.As(err, &te) || !te.Retryable() {
			return zero, err
		}
		last = te

		if attempt == attempts {
			break
		}

		retriesTotal.WithLabelValues(string(te.Class)).Inc()
		retryBackoffSeconds.WithLabelValues(string(te.Class)).Observe(backoff.Seconds())

		log.Warn().
			Err(te).
			Str("error_class", string(te.Class)).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retrying request after backoff")

		if err := cfg.sleep(ctx, backoff); err != nil {
			log.Warn().
				Str("error_class", string(te.Class)).
				Int("attempt", attempt).
				Msg("Context cancelled during retry backoff")
			return zero, fmt.Errorf("retry cancelled after %d attempts: %w (last error: %v)", attempt, err, te)
		}
		backoff = cfg.next(backoff)
	}

	retryExhaustedTotal.WithLabelValues(string(last.Class)).Inc()
	log.Error().
		Err(last).
		Str("error_class", string(last.Class)).
		Int("max_attempts", attempts).
		Msg("Retry attempts exhausted")

	return zero, &RetriesExhaustedError{Attempts: attempts, Last: last}
}
