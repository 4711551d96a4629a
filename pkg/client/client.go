// Package client provides the jolpica-f1 HTTP client with rate limiting, retries, caching,
// and multi-page aggregation.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ramonrsv/f1-data/pkg/cache"
	"github.com/ramonrsv/f1-data/pkg/jolpica"
	"github.com/ramonrsv/f1-data/pkg/logging"
	"github.com/ramonrsv/f1-data/pkg/pagination"
	"github.com/ramonrsv/f1-data/pkg/ratelimit"
)

// Prometheus metrics for jolpica client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_requests_total",
		Help: "Total jolpica requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "f1_request_duration_seconds",
		Help:    "Page fetch duration in seconds by resource, including rate limit waits and retries",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_errors_total",
		Help: "Total jolpica errors by class",
	}, []string{"class"})
)

// errorClassDecode labels f1_errors_total for bodies that fail to decode.
const errorClassDecode = "decode"

// maxErrorBody bounds how much of an error response is read before the connection is reused.
const maxErrorBody = 4 << 10

// DefaultUserAgent identifies this library to the API.
const DefaultUserAgent = "f1-data/0.1 (+https://github.com/ramonrsv/f1-data)"

// Client is the main jolpica-f1 client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    ratelimit.Acquirer
	cache      *cache.Manager
	aggregator *pagination.Aggregator
	retry      RetryConfig
	inflight   singleflight.Group
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, without a trailing ".json" resource.
	BaseURL string

	// User-Agent header sent with every request.
	UserAgent string

	// MultiPage controls how GetResponse handles results spanning several pages.
	MultiPage pagination.MultiPageOption

	// HTTPRetries is the number of retries after a failed attempt; 0 disables retrying.
	HTTPRetries  int
	RetryBackoff time.Duration

	// RateLimiter selects who owns the request quota.
	RateLimiter ratelimit.Option

	// Timeout of a single HTTP attempt. Ignored when HTTPClient is set.
	Timeout    time.Duration
	HTTPClient *http.Client

	// Cache stores page bodies when non-nil. CacheTTL applies to responses without
	// freshness headers.
	Cache    *cache.Manager
	CacheTTL time.Duration

	// Logger defaults to the global logger with component "f1-client".
	Logger *zerolog.Logger
}

// DefaultConfig returns the default configuration: unbounded multi-page handling, two
// retries one second apart, and an owned limiter enforcing the published quota.
func DefaultConfig() Config {
	return Config{
		BaseURL:      jolpica.BaseURL,
		UserAgent:    DefaultUserAgent,
		MultiPage:    pagination.Enabled(nil),
		HTTPRetries:  2,
		RetryBackoff: 1 * time.Second,
		RateLimiter:  ratelimit.Owned(ratelimit.JolpicaQuota),
		Timeout:      30 * time.Second,
		CacheTTL:     cache.DefaultTTL,
	}
}

// New creates a new jolpica-f1 client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url, got %q", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.HTTPRetries < 0 {
		return nil, fmt.Errorf("http_retries must be >= 0 (got %d)", cfg.HTTPRetries)
	}

	limiter, err := cfg.RateLimiter.Build()
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	logger := logging.NewLogger("f1-client")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		limiter:    limiter,
		cache:      cfg.Cache,
		retry: RetryConfig{
			MaxAttempts: cfg.HTTPRetries + 1,
			Backoff:     cfg.RetryBackoff,
		},
		config: cfg,
		logger: logger,
	}
	c.aggregator = pagination.NewAggregator(c, cfg.MultiPage).WithLogger(logger)
	return c, nil
}

// FetchPage fetches and decodes one page of resource. The page body comes from the cache when
// possible; otherwise the request waits for the rate limiter and is retried on transport
// failures. Concurrent identical requests share one upstream call.
func (c *Client) FetchPage(ctx context.Context, resource jolpica.Resource, page jolpica.Page) (*jolpica.Response, error) {
	if page.Limit > jolpica.MaxLimit {
		return nil, fmt.Errorf("page limit %d exceeds maximum %d", page.Limit, jolpica.MaxLimit)
	}
	target, err := resource.URL(c.baseURL, &page)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	kind := resource.Kind.String()
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(kind).Observe(time.Since(startTime).Seconds())
	}()

	body, err := c.pageBody(ctx, resource, page, target)
	if err != nil {
		return nil, err
	}

	resp, err := jolpica.Decode(body)
	if err != nil {
		errorsTotal.WithLabelValues(errorClassDecode).Inc()
		c.logger.Error().
			Err(err).
			Str("resource", kind).
			Str("url", target).
			Msg("Failed to decode response")
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}
	return resp, nil
}

// pageBody returns the raw body of one page.
func (c *Client) pageBody(ctx context.Context, resource jolpica.Resource, page jolpica.Page, target string) ([]byte, error) {
	var key cache.CacheKey
	if c.cache != nil {
		var err error
		if key, err = cache.PageKey(resource, page); err != nil {
			return nil, err
		}
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			c.logger.Debug().
				Str("url", target).
				Dur("ttl", entry.TTL()).
				Dur("age", entry.Age()).
				Msg("Cache hit")
			requestsTotal.WithLabelValues(resource.Kind.String(), "cached").Inc()
			return entry.Data, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", target).Msg("Cache get error")
		}
	}

	ch := c.inflight.DoChan(target, func() (any, error) {
		fetched, err := Retry(ctx, c.retry, func() (*fetchedPage, error) {
			c.limiter.Acquire()
			return c.get(ctx, resource.Kind.String(), target)
		})
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.store(ctx, key, fetched)
		}
		return fetched.body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug().Str("url", target).Msg("Shared in-flight request")
		}
		return res.Val.([]byte), nil
	}
}

// fetchedPage is a successful response whose body has been read.
type fetchedPage struct {
	body []byte
	resp *http.Response
}

// get performs one HTTP attempt. Failures the retry policy may act on are *TransportError.
func (c *Client) get(ctx context.Context, kind, target string) (*fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("resource", kind).
		Str("url", target).
		Msg("Executing jolpica request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled caller is not a transport failure worth retrying.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(kind, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", target).Msg("HTTP request failed")
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		te := newStatusError(resp)
		errorsTotal.WithLabelValues(string(te.Class)).Inc()
		c.logger.Warn().
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("error_class", string(te.Class)).
			Msg("jolpica request error")
		return nil, te
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, newNetworkError(fmt.Errorf("read body: %w", err))
	}
	return &fetchedPage{body: body, resp: resp}, nil
}

// store caches a fetched page. Failures are logged, never returned.
func (c *Client) store(ctx context.Context, key cache.CacheKey, fetched *fetchedPage) {
	entry := cache.ResponseToEntry(fetched.resp, fetched.body, c.config.CacheTTL)
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("key", key.String()).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// FetchSinglePage fetches resource at the maximum page size and fails with
// pagination.ErrMultiPage if it does not fit.
func (c *Client) FetchSinglePage(ctx context.Context, resource jolpica.Resource) (*jolpica.Response, error) {
	resp, err := c.FetchPage(ctx, resource, jolpica.MaxPage())
	if err != nil {
		return nil, err
	}
	if !resp.IsSinglePage() {
		return nil, fmt.Errorf("%w: %d records over %d pages", pagination.ErrMultiPage, resp.Total, resp.PageCount())
	}
	return resp, nil
}

// FetchAllPages fetches every page of resource, regardless of Config.MultiPage.
func (c *Client) FetchAllPages(ctx context.Context, resource jolpica.Resource) (*jolpica.Response, error) {
	return pagination.NewAggregator(c, pagination.Enabled(nil)).WithLogger(c.logger).Fetch(ctx, resource)
}

// GetResponse fetches resource, handling multiple pages as Config.MultiPage allows.
func (c *Client) GetResponse(ctx context.Context, resource jolpica.Resource) (*jolpica.Response, error) {
	return c.aggregator.Fetch(ctx, resource)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Cache returns the page cache, or nil when caching is disabled.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
