package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request throttling.
var (
	rateLimitAcquiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_rate_limit_acquires_total",
		Help: "Total number of rate limiter acquisitions",
	}, []string{"mode"})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "f1_rate_limit_wait_seconds",
		Help:    "Time spent waiting for the rate limiter",
		Buckets: []float64{0, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
)

// Acquirer gates outbound requests. Acquire blocks until one request may be sent. It never
// fails and is safe for concurrent use.
type Acquirer interface {
	Acquire()
}

// Clock is the time source of a Limiter. Tests substitute a fake to observe waits without
// sleeping.
type Clock struct {
	Now   func() time.Time
	Sleep func(time.Duration)
}

// SystemClock uses time.Now and time.Sleep.
func SystemClock() Clock {
	return Clock{Now: time.Now, Sleep: time.Sleep}
}

// Limiter is an in-process token bucket holding Quota.Burst tokens, refilled at one token
// per Quota.Interval.
type Limiter struct {
	quota   Quota
	limiter *rate.Limiter
	clock   Clock
	mode    string

	mu       sync.Mutex
	lastWait time.Duration
}

// NewLimiter creates a token bucket for q, starting full.
func NewLimiter(q Quota) (*Limiter, error) {
	return NewLimiterWithClock(q, SystemClock())
}

// NewLimiterWithClock is NewLimiter with an explicit time source.
func NewLimiterWithClock(q Quota, clock Clock) (*Limiter, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		quota:   q,
		limiter: rate.NewLimiter(rate.Every(q.Interval()), q.Burst),
		clock:   clock,
		mode:    ModeOwned.String(),
	}, nil
}

// Acquire reserves a token and sleeps until it is due. Reservations are handed out in call
// order, so concurrent callers queue rather than race for tokens.
func (l *Limiter) Acquire() {
	now := l.clock.Now()
	wait := l.limiter.ReserveN(now, 1).DelayFrom(now)

	l.mu.Lock()
	l.lastWait = wait
	l.mu.Unlock()

	rateLimitAcquiresTotal.WithLabelValues(l.mode).Inc()
	rateLimitWaitSeconds.Observe(wait.Seconds())

	if wait > 0 {
		l.clock.Sleep(wait)
	}
}

// LastWait reports how long the most recent Acquire waited.
func (l *Limiter) LastWait() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastWait
}

// Quota returns the quota l enforces.
func (l *Limiter) Quota() Quota {
	return l.quota
}

// Nop never delays.
type Nop struct{}

// Acquire returns immediately.
func (Nop) Acquire() {
	rateLimitAcquiresTotal.WithLabelValues(ModeNone.String()).Inc()
}
