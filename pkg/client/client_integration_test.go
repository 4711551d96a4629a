//go:build integration

package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ramonrsv/f1-data/internal/testutil"
	"github.com/ramonrsv/f1-data/pkg/cache"
	"github.com/ramonrsv/f1-data/pkg/jolpica"
	"github.com/ramonrsv/f1-data/pkg/ratelimit"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_FullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockJolpica()
	defer mock.Close()
	mock.SetPages(seasonsPath, map[uint32]string{
		0:   testutil.SeasonsPage(100, 0, 175, 1850),
		100: testutil.SeasonsPage(100, 100, 175, 1850),
	})

	client := newTestClient(t, mock, func(c *Config) {
		c.Cache = cache.NewManager(redisClient)
		c.CacheTTL = time.Minute
	})

	ctx := context.Background()

	// First aggregation hits the server for both pages.
	seasons, err := client.GetSeasons(ctx, jolpica.Filters{})
	if err != nil {
		t.Fatalf("GetSeasons() error = %v", err)
	}
	if len(seasons) != 175 {
		t.Errorf("len(seasons) = %d, want 175", len(seasons))
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("RequestCount = %d, want 2", got)
	}

	// Second aggregation is served from Redis.
	if _, err := client.GetSeasons(ctx, jolpica.Filters{}); err != nil {
		t.Fatalf("GetSeasons() error = %v", err)
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("RequestCount after cache hit = %d, want 2", got)
	}

	// Purging the endpoint forces a refetch.
	removed, err := client.Cache().Purge(ctx, "/seasons")
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Purge() removed %d, want 2", removed)
	}
	if _, err := client.GetSeasons(ctx, jolpica.Filters{}); err != nil {
		t.Fatalf("GetSeasons() error = %v", err)
	}
	if got := mock.GetRequestCount(); got != 4 {
		t.Errorf("RequestCount after purge = %d, want 4", got)
	}
}

func TestIntegration_SharedRedisLimiter(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockJolpica()
	defer mock.Close()
	mock.SetResponse(seasonsPath, testutil.NewOKResponse(testutil.SeasonsPage(100, 0, 1, 2023)))

	quota := ratelimit.PerSecond(10).WithBurst(2)
	limiter, err := ratelimit.NewRedisLimiter(redisClient, "f1:ratelimit:test", quota, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRedisLimiter() error = %v", err)
	}

	// Two clients, one quota.
	a := newTestClient(t, mock, func(c *Config) { c.RateLimiter = ratelimit.Shared(limiter) })
	b := newTestClient(t, mock, func(c *Config) { c.RateLimiter = ratelimit.Shared(limiter) })

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		for _, c := range []*Client{a, b} {
			if _, err := c.FetchPage(ctx, allSeasons, jolpica.MaxPage()); err != nil {
				t.Fatalf("FetchPage() error = %v", err)
			}
		}
	}

	// 6 requests, burst 2, 100ms interval: at least 4 waits.
	if elapsed := time.Since(start); elapsed < 350*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 350ms", elapsed)
	}
}

// redirectTransport sends requests for the public API to the mock server.
type redirectTransport struct {
	mock *testutil.MockJolpica
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(t.mock.URL())
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = target.Scheme
	req.URL.Host = target.Host
	req.URL.Path = strings.TrimPrefix(req.URL.Path, "/ergast/f1")
	return http.DefaultTransport.RoundTrip(req)
}

func TestIntegration_DefaultBaseURLThroughTransport(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockJolpica()
	defer mock.Close()
	mock.SetResponse("/2023/4/results.json", testutil.NewOKResponse(testutil.Envelope(100, 0, 2,
		testutil.RacesTable(testutil.Race(2023, 4, `"Results":[`+
			testutil.RaceResult(1, testutil.Driver("perez", "Sergio", "Perez"))+","+
			testutil.RaceResult(2, testutil.Driver("max_verstappen", "Max", "Verstappen"))+`]`)))))

	logger := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.RateLimiter = ratelimit.None()
	cfg.Logger = &logger
	cfg.Cache = cache.NewManager(redisClient)
	cfg.HTTPClient = &http.Client{Transport: &redirectTransport{mock: mock}, Timeout: 10 * time.Second}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	race, err := client.GetRaceResultsForEvent(ctx, jolpica.Filters{}.WithSeason(2023).WithRound(4))
	if err != nil {
		t.Fatalf("GetRaceResultsForEvent() error = %v", err)
	}
	if len(race.Payload) != 2 || race.Payload[0].Driver.DriverID != "perez" {
		t.Errorf("results = %+v, want perez then max_verstappen", race.Payload)
	}

	if _, err := client.GetRaceResultsForEvent(ctx, jolpica.Filters{}.WithSeason(2023).WithRound(4)); err != nil {
		t.Fatalf("second GetRaceResultsForEvent() error = %v", err)
	}
	if got := mock.GetPathCount("/2023/4/results.json"); got != 1 {
		t.Errorf("upstream requests = %d, want 1", got)
	}

	// A round that does not exist is a 404 from the server and is not retried.
	_, err = client.GetRaceResultsForEvent(ctx, jolpica.Filters{}.WithSeason(2023).WithRound(40))
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want 404 TransportError", err)
	}
	if got := mock.GetPathCount("/2023/40/results.json"); got != 1 {
		t.Errorf("404 requests = %d, want 1", got)
	}
}

func TestIntegration_CacheExpiration(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockJolpica()
	defer mock.Close()
	mock.SetHandler(seasonsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=1")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testutil.SeasonsPage(100, 0, 3, 2021)))
	})

	client := newTestClient(t, mock, func(c *Config) { c.Cache = cache.NewManager(redisClient) })
	ctx := context.Background()

	if _, err := client.FetchPage(ctx, allSeasons, jolpica.MaxPage()); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	key, err := cache.PageKey(allSeasons, jolpica.MaxPage())
	if err != nil {
		t.Fatalf("PageKey() error = %v", err)
	}
	entry, err := client.Cache().Get(ctx, key)
	if err != nil {
		t.Fatalf("cache Get() error = %v", err)
	}
	if entry.IsExpired() {
		t.Error("entry should not be expired yet")
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := client.Cache().Get(ctx, key); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("cache Get() after expiry error = %v, want ErrCacheMiss", err)
	}
	if _, err := client.FetchPage(ctx, allSeasons, jolpica.MaxPage()); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if got := mock.GetRequestCount(); got != 2 {
		t.Errorf("RequestCount = %d, want 2 (expired entry refetched)", got)
	}
}
