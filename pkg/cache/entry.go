package cache

import (
	"time"
)

// CacheEntry is one cached page body, stored as JSON under its CacheKey.
type CacheEntry struct {
	// Data is the raw MRData body as served.
	Data []byte `json:"data"`

	// URL the page was fetched from, including limit and offset.
	URL string `json:"url"`

	// Expires is when the page stops being served. ResponseToEntry sets it to the fetch time
	// for no-store and no-cache responses, and Set skips such entries.
	Expires time.Time `json:"expires"`

	CachedAt time.Time `json:"cached_at"`
}

// IsExpired reports whether the page may no longer be served.
func (e *CacheEntry) IsExpired() bool {
	return e.remaining(time.Now()) == 0
}

// TTL is how long the page may still be served, never negative.
func (e *CacheEntry) TTL() time.Duration {
	return e.remaining(time.Now())
}

// Age is the time since the page was fetched.
func (e *CacheEntry) Age() time.Duration {
	if e.CachedAt.IsZero() {
		return 0
	}
	return time.Since(e.CachedAt)
}

func (e *CacheEntry) remaining(now time.Time) time.Duration {
	return max(e.Expires.Sub(now), 0)
}
