// Package ratelimit throttles outbound requests to the jolpica-f1 request quota.
//
// A limiter only ever delays: Acquire blocks until a request may be sent and never fails.
// Limiting can be disabled, owned by one client, or shared between clients (in-process via a
// shared Acquirer, or across processes via Redis).
package ratelimit

import (
	"fmt"
	"time"

	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

// RedisKeyPrefix namespaces limiter state stored in Redis.
const RedisKeyPrefix = "f1:rate_limit:"

// Quota is a budget of Count requests per Window, of which up to Burst may be sent
// back-to-back.
type Quota struct {
	Count  int
	Window time.Duration
	Burst  int
}

// PerSecond returns a quota of n requests per second with a burst of n.
func PerSecond(n int) Quota {
	return Quota{Count: n, Window: time.Second, Burst: n}
}

// PerHour returns a quota of n requests per hour with a burst of n.
func PerHour(n int) Quota {
	return Quota{Count: n, Window: time.Hour, Burst: n}
}

// WithBurst returns q with its burst replaced.
func (q Quota) WithBurst(burst int) Quota {
	q.Burst = burst
	return q
}

// Interval is the sustained spacing between requests.
func (q Quota) Interval() time.Duration {
	return q.Window / time.Duration(q.Count)
}

// Validate reports whether q can drive a limiter.
func (q Quota) Validate() error {
	if q.Count <= 0 {
		return fmt.Errorf("quota count must be positive, got %d", q.Count)
	}
	if q.Window <= 0 {
		return fmt.Errorf("quota window must be positive, got %s", q.Window)
	}
	if q.Burst <= 0 {
		return fmt.Errorf("quota burst must be positive, got %d", q.Burst)
	}
	return nil
}

func (q Quota) String() string {
	return fmt.Sprintf("%d/%s burst %d", q.Count, q.Window, q.Burst)
}

// JolpicaQuota is the published jolpica-f1 quota: 500 requests per hour in bursts of up to 4.
var JolpicaQuota = PerHour(jolpica.SustainedLimitPerHour).WithBurst(jolpica.BurstLimitPerSecond)
