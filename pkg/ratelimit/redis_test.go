package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() {
		client.Close()
		mini.Close()
	})
	return mini, client
}

func TestNewRedisLimiter(t *testing.T) {
	_, client := setupMiniredis(t)

	if _, err := NewRedisLimiter(nil, "", JolpicaQuota, zerolog.Nop()); err == nil {
		t.Error("NewRedisLimiter(nil) error = nil, want error")
	}
	if _, err := NewRedisLimiter(client, "", Quota{}, zerolog.Nop()); err == nil {
		t.Error("NewRedisLimiter(invalid quota) error = nil, want error")
	}

	l, err := NewRedisLimiter(client, "", JolpicaQuota, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRedisLimiter() error = %v", err)
	}
	if l.key != DefaultRedisKey {
		t.Errorf("key = %q, want %q", l.key, DefaultRedisKey)
	}
	if l.Quota() != JolpicaQuota {
		t.Errorf("Quota() = %v, want %v", l.Quota(), JolpicaQuota)
	}
}

func TestRedisLimiter_Reserve(t *testing.T) {
	mini, client := setupMiniredis(t)
	clock := newFakeClock()
	quota := PerSecond(4)

	l, err := NewRedisLimiterWithClock(client, "", quota, clock.Clock(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRedisLimiterWithClock() error = %v", err)
	}
	ctx := context.Background()

	for i := 0; i < quota.Burst; i++ {
		wait, err := l.Reserve(ctx)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if wait != 0 {
			t.Errorf("Reserve %d wait = %v, want 0", i, wait)
		}
	}

	for i := 1; i <= 3; i++ {
		wait, err := l.Reserve(ctx)
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if want := time.Duration(i) * quota.Interval(); wait != want {
			t.Errorf("Reserve over burst wait = %v, want %v", wait, want)
		}
	}

	if !mini.Exists(DefaultRedisKey) {
		t.Errorf("key %q not stored", DefaultRedisKey)
	}
	if ttl := mini.TTL(DefaultRedisKey); ttl <= 0 {
		t.Errorf("TTL = %v, want positive", ttl)
	}
}

func TestRedisLimiter_SharedBetweenInstances(t *testing.T) {
	_, client := setupMiniredis(t)
	clock := newFakeClock()
	quota := PerSecond(2)

	a, _ := NewRedisLimiterWithClock(client, "shared", quota, clock.Clock(), zerolog.Nop())
	b, _ := NewRedisLimiterWithClock(client, "shared", quota, clock.Clock(), zerolog.Nop())
	ctx := context.Background()

	if wait, _ := a.Reserve(ctx); wait != 0 {
		t.Errorf("a wait = %v, want 0", wait)
	}
	if wait, _ := b.Reserve(ctx); wait != 0 {
		t.Errorf("b wait = %v, want 0", wait)
	}
	// The burst is spent by the two instances together.
	if wait, _ := a.Reserve(ctx); wait != quota.Interval() {
		t.Errorf("a wait = %v, want %v", wait, quota.Interval())
	}
}

func TestRedisLimiter_AcquireSleeps(t *testing.T) {
	_, client := setupMiniredis(t)
	clock := newFakeClock()

	l, _ := NewRedisLimiterWithClock(client, "", PerSecond(1), clock.Clock(), zerolog.Nop())
	l.Acquire()
	l.Acquire()

	if got := clock.Sleeps(); len(got) != 1 || got[0] != time.Second {
		t.Errorf("sleeps = %v, want [1s]", got)
	}
}

func TestRedisLimiter_RefillsAfterIdle(t *testing.T) {
	_, client := setupMiniredis(t)
	clock := newFakeClock()
	quota := PerSecond(2)

	l, _ := NewRedisLimiterWithClock(client, "", quota, clock.Clock(), zerolog.Nop())
	ctx := context.Background()
	l.Reserve(ctx)
	l.Reserve(ctx)

	clock.Advance(quota.Window)
	if wait, _ := l.Reserve(ctx); wait != 0 {
		t.Errorf("wait after idle = %v, want 0", wait)
	}
}

func TestRedisLimiter_FallsBackWhenRedisDown(t *testing.T) {
	mini, client := setupMiniredis(t)
	clock := newFakeClock()
	quota := PerSecond(2)

	l, _ := NewRedisLimiterWithClock(client, "", quota, clock.Clock(), zerolog.Nop())
	mini.Close()

	if _, err := l.Reserve(context.Background()); err == nil {
		t.Fatal("Reserve() with Redis down error = nil, want error")
	}

	// Acquire never fails; the local fallback enforces the same quota.
	for i := 0; i < quota.Burst+1; i++ {
		l.Acquire()
	}
	if got := l.fallback.LastWait(); got != quota.Interval() {
		t.Errorf("fallback LastWait() = %v, want %v", got, quota.Interval())
	}
}
