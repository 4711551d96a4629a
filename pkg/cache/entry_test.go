package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

const seasonsPageURL = "https://api.jolpi.ca/ergast/f1/seasons.json?limit=100&offset=0"

func TestCacheEntry_JSONKeepsPage(t *testing.T) {
	cachedAt := time.Date(2023, 4, 30, 14, 0, 0, 0, time.UTC)
	entry := &CacheEntry{
		Data:     []byte(`{"MRData":{"limit":"100","offset":"0","total":"75"}}`),
		URL:      seasonsPageURL,
		Expires:  cachedAt.Add(time.Hour),
		CachedAt: cachedAt,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got CacheEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.URL != seasonsPageURL {
		t.Errorf("URL = %q, want %q", got.URL, seasonsPageURL)
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("Data = %s, want %s", got.Data, entry.Data)
	}
	if !got.Expires.Equal(entry.Expires) || !got.CachedAt.Equal(cachedAt) {
		t.Errorf("times = (%v, %v), want (%v, %v)", got.Expires, got.CachedAt, entry.Expires, cachedAt)
	}
}

func TestCacheEntry_Freshness(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name        string
		expires     time.Time
		wantExpired bool
		wantMinTTL  time.Duration
		wantMaxTTL  time.Duration
	}{
		{"fresh for an hour", now.Add(time.Hour), false, 59 * time.Minute, time.Hour},
		{"expired a second ago", now.Add(-time.Second), true, 0, 0},
		{"zero expiry", time.Time{}, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}
			if got := entry.TTL(); got < tt.wantMinTTL || got > tt.wantMaxTTL {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMinTTL, tt.wantMaxTTL)
			}
		})
	}
}

func TestCacheEntry_Age(t *testing.T) {
	if got := (&CacheEntry{}).Age(); got != 0 {
		t.Errorf("Age() without CachedAt = %v, want 0", got)
	}

	entry := &CacheEntry{CachedAt: time.Now().Add(-2 * time.Minute)}
	if got := entry.Age(); got < 2*time.Minute || got > 2*time.Minute+time.Second {
		t.Errorf("Age() = %v, want about 2m", got)
	}
}

func TestCacheEntry_UncacheableResponseNotStored(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()

	for _, directive := range []string{"no-store", "no-cache"} {
		t.Run(directive, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, seasonsPageURL, nil)
			resp := &http.Response{
				Header:  http.Header{"Cache-Control": []string{directive}},
				Request: req,
			}

			entry := ResponseToEntry(resp, []byte(`{}`), DefaultTTL)
			if !entry.IsExpired() {
				t.Errorf("entry for %s: IsExpired() = false, want true", directive)
			}
			if entry.URL != seasonsPageURL {
				t.Errorf("URL = %q, want %q", entry.URL, seasonsPageURL)
			}

			key := CacheKey{Endpoint: "/seasons"}
			if err := manager.Set(ctx, key, entry); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
				t.Errorf("Get() error = %v, want ErrCacheMiss", err)
			}
		})
	}
}
