package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis starts an in-memory Redis and returns a client for it.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client, _ := setupMiniredis(t)
	return client
}

func setupMiniredis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr: mini.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mini.Close()
	})

	return client, mini
}

func TestNewManager(t *testing.T) {
	client := setupTestRedis(t)

	manager := NewManager(client)
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil)
}

func TestManager_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{
		Endpoint: "/2023/4/results",
	}

	entry := &CacheEntry{
		Data:     []byte(`{"MRData": {"total": "20"}}`),
		URL:      "https://api.jolpi.ca/ergast/f1/2023/4/results.json",
		Expires:  time.Now().Add(5 * time.Minute),
		CachedAt: time.Now(),
	}

	// Set entry
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get entry
	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Verify data
	if string(retrieved.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved.Data, entry.Data)
	}
	if retrieved.URL != entry.URL {
		t.Errorf("URL mismatch: got %s, want %s", retrieved.URL, entry.URL)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{
		Endpoint: "/1950/drivers",
	}

	_, err := manager.Get(ctx, key)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Get_ExpiredEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{
		Endpoint: "/seasons",
	}

	// Create already expired entry
	entry := &CacheEntry{
		Data:    []byte(`{"test": "data"}`),
		Expires: time.Now().Add(-1 * time.Hour), // Already expired
	}

	// Set should not cache expired entries
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get should return cache miss
	_, err := manager.Get(ctx, key)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{
		Endpoint: "/seasons",
	}

	entry := &CacheEntry{
		Data:    []byte(`{"test": "data"}`),
		Expires: time.Now().Add(5 * time.Minute),
	}

	// Set entry
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Verify it exists
	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}

	// Delete entry
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Verify it's gone
	_, err := manager.Get(ctx, key)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Get_ExpiredByTimestamp(t *testing.T) {
	client, mini := setupMiniredis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{Endpoint: "/current/last/results"}
	entry := &CacheEntry{
		Data:    []byte(`{}`),
		Expires: time.Now().Add(50 * time.Millisecond),
	}
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Redis still holds the key, but the entry's own expiry has passed.
	time.Sleep(100 * time.Millisecond)
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
	if mini.Exists(key.String()) {
		t.Error("expired entry was not deleted")
	}
}

func TestManager_Get_InvalidEntry(t *testing.T) {
	client, mini := setupMiniredis(t)
	manager := NewManager(client)

	key := CacheKey{Endpoint: "/seasons"}
	if err := mini.Set(key.String(), "not json"); err != nil {
		t.Fatalf("mini.Set failed: %v", err)
	}

	if _, err := manager.Get(context.Background(), key); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry, got %v", err)
	}
}

func TestManager_Purge(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	entry := &CacheEntry{Data: []byte(`{}`), Expires: time.Now().Add(time.Hour)}
	keys := []CacheKey{
		{Endpoint: "/2023/results", QueryParams: map[string][]string{"offset": {"0"}}},
		{Endpoint: "/2023/results", QueryParams: map[string][]string{"offset": {"100"}}},
		{Endpoint: "/2023/drivers", QueryParams: map[string][]string{"offset": {"0"}}},
	}
	for _, key := range keys {
		if err := manager.Set(ctx, key, entry); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	removed, err := manager.Purge(ctx, "/2023/results")
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Purge removed %d entries, want 2", removed)
	}
	if _, err := manager.Get(ctx, keys[2]); err != nil {
		t.Errorf("unrelated entry lost: %v", err)
	}

	removed, err = manager.Purge(ctx, "")
	if err != nil {
		t.Fatalf("Purge all failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Purge all removed %d entries, want 1", removed)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client)
	ctx := context.Background()

	key := CacheKey{
		Endpoint: "/seasons",
	}

	err := manager.Set(ctx, key, nil)
	if err == nil {
		t.Error("Set with nil entry should return error")
	}
}

func TestManager_BytesCounted(t *testing.T) {
	manager := NewManager(setupTestRedis(t))
	ctx := context.Background()
	key := CacheKey{Endpoint: "/2023/drivers"}

	setBefore := testutil.ToFloat64(CacheBytes.WithLabelValues("set"))
	getBefore := testutil.ToFloat64(CacheBytes.WithLabelValues("get"))

	entry := &CacheEntry{
		Data:     []byte(`{"MRData": {"total": "22"}}`),
		Expires:  time.Now().Add(time.Minute),
		CachedAt: time.Now(),
	}
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	written := testutil.ToFloat64(CacheBytes.WithLabelValues("set")) - setBefore
	if written <= 0 {
		t.Fatalf("bytes written = %v, want > 0", written)
	}

	for i := 0; i < 2; i++ {
		if _, err := manager.Get(ctx, key); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}
	if served := testutil.ToFloat64(CacheBytes.WithLabelValues("get")) - getBefore; served != 2*written {
		t.Errorf("bytes served = %v, want %v", served, 2*written)
	}
	if got := testutil.ToFloat64(CacheBytes.WithLabelValues("set")) - setBefore; got != written {
		t.Errorf("bytes written after reads = %v, want %v", got, written)
	}
}
