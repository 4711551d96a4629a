package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the fallback TTL when the response carries no freshness headers.
	// Historical results rarely change, but the current season's do after every session.
	DefaultTTL = 1 * time.Hour
)

// ResponseToEntry builds the cache entry for a successful response whose body has already
// been read. The expiry comes from Cache-Control max-age, then Expires, then defaultTTL.
// A response marked no-store yields an entry that is already expired, which Set skips.
func ResponseToEntry(resp *http.Response, body []byte, defaultTTL time.Duration) *CacheEntry {
	now := time.Now()
	entry := &CacheEntry{
		Data:     body,
		CachedAt: now,
		Expires:  now.Add(defaultTTL),
	}
	if resp == nil {
		return entry
	}
	if resp.Request != nil && resp.Request.URL != nil {
		entry.URL = resp.Request.URL.String()
	}
	entry.Expires = parseExpires(resp.Header, now, defaultTTL)
	return entry
}

// parseExpires derives the expiry from the response headers.
func parseExpires(headers http.Header, now time.Time, defaultTTL time.Duration) time.Time {
	if cc := headers.Get("Cache-Control"); cc != "" {
		for _, directive := range strings.Split(cc, ",") {
			directive = strings.TrimSpace(strings.ToLower(directive))
			switch {
			case directive == "no-store" || directive == "no-cache":
				return now
			case strings.HasPrefix(directive, "max-age="):
				if secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil && secs >= 0 {
					return now.Add(time.Duration(secs) * time.Second)
				}
			}
		}
	}

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return now.Add(defaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return now.Add(defaultTTL)
	}
	if expires.Before(now) {
		return now
	}
	return expires
}
