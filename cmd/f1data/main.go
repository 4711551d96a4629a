// Command f1data queries the jolpica-f1 API and prints the results as tables.
//
//	f1data results --season 2023 --round 4
//	f1data laps --season 2023 --round 4 --driver perez -f csv
//	f1data serve --listen :8080 --redis-addr localhost:6379
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ramonrsv/f1-data/pkg/cache"
	"github.com/ramonrsv/f1-data/pkg/client"
	"github.com/ramonrsv/f1-data/pkg/logging"
	"github.com/ramonrsv/f1-data/pkg/metrics"
	"github.com/ramonrsv/f1-data/pkg/ratelimit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet()
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return 2
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}

	logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: stderr})
	logger := logging.NewLogger("f1data")

	name, rest := fs.Arg(0), fs.Args()[1:]

	// Commands that need no API client.
	if name == "metrics" {
		fmt.Fprintln(stdout, render(metricsTable(rest), cfg.Format))
		return 0
	}

	f1Client, redisClient, err := buildClient(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create client")
		return 1
	}
	defer f1Client.Close()
	if redisClient != nil {
		defer redisClient.Close()
	}

	switch name {
	case "serve":
		return serve(ctx, cfg, f1Client, redisClient, logger)
	case "cache-purge":
		return purge(ctx, f1Client, rest, stdout, logger)
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr, fs)
		return 2
	}

	filters, err := parseFilters(flagLookup(fs))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn().Err(err).Str("addr", cfg.MetricsAddr).Msg("Metrics server failed")
			}
		}()
		defer srv.Close()
	}

	start := time.Now()
	t, err := cmd.run(ctx, f1Client, filters)
	if err != nil {
		logger.Error().Err(err).Str("command", name).Msg("Query failed")
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	logger.Info().
		Str("command", name).
		Int("rows", t.Length()).
		Dur("duration", time.Since(start)).
		Msg("Query complete")

	fmt.Fprintln(stdout, render(t, cfg.Format))
	return 0
}

// buildClient creates the API client and, when configured, the Redis client it shares.
func buildClient(cfg config, logger zerolog.Logger) (*client.Client, *redis.Client, error) {
	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.Timeout = cfg.Timeout
	clientCfg.HTTPRetries = cfg.HTTPRetries
	clientCfg.RetryBackoff = cfg.RetryBackoff
	clientCfg.MultiPage = cfg.multiPage()
	clientCfg.CacheTTL = cfg.CacheTTL
	clientLogger := logging.NewLogger("f1-client")
	clientCfg.Logger = &clientLogger

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if !cfg.NoCache {
			clientCfg.Cache = cache.NewManager(redisClient)
		}
	}

	switch cfg.RateLimit {
	case rateLimitNone:
		clientCfg.RateLimiter = ratelimit.None()
	case rateLimitRedis:
		limiter, err := ratelimit.NewRedisLimiter(redisClient, "", ratelimit.JolpicaQuota,
			logging.NewLogger("f1-ratelimit"))
		if err != nil {
			return nil, redisClient, err
		}
		clientCfg.RateLimiter = ratelimit.Shared(limiter)
	default:
		clientCfg.RateLimiter = ratelimit.Owned(ratelimit.JolpicaQuota)
	}

	f1Client, err := client.New(clientCfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, nil, err
	}

	logger.Debug().
		Str("base_url", cfg.BaseURL).
		Str("rate_limit", cfg.RateLimit).
		Bool("cache", clientCfg.Cache != nil).
		Str("multi_page", clientCfg.MultiPage.String()).
		Msg("Client configured")

	return f1Client, redisClient, nil
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg config, f1Client *client.Client, redisClient *redis.Client, logger zerolog.Logger) int {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newServeMux(f1Client, redisClient, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Starting f1data server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
			return 1
		}
		logger.Info().Msg("Server stopped")
	}
	return 0
}

// purge removes cached pages of the endpoints in args, or every page when args is empty.
func purge(ctx context.Context, f1Client *client.Client, args []string, stdout io.Writer, logger zerolog.Logger) int {
	manager := f1Client.Cache()
	if manager == nil {
		logger.Error().Msg("cache-purge requires --redis-addr")
		return 2
	}
	if len(args) == 0 {
		args = []string{""}
	}

	total := 0
	for _, endpoint := range args {
		removed, err := manager.Purge(ctx, endpoint)
		if err != nil {
			logger.Error().Err(err).Str("endpoint", endpoint).Msg("Purge failed")
			return 1
		}
		total += removed
	}
	fmt.Fprintf(stdout, "removed %d cached pages\n", total)
	return 0
}

// metricsTable lists the exported metrics whose names contain any of filters.
func metricsTable(filters []string) table.Writer {
	list := metrics.Catalogue
	if len(filters) > 0 {
		list = nil
		for _, f := range filters {
			list = append(list, metrics.Filter(f)...)
		}
	}
	t := newTable("Name", "Type", "Labels", "Package", "Help")
	for _, m := range list {
		t.AppendRow(table.Row{m.Name, m.Type, strings.Join(m.Labels, ","), m.Package, m.Help})
	}
	return t
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: f1data [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Queries:")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %-13s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other commands:")
	fmt.Fprintf(w, "  %-13s %s\n", "serve", "serve queries, /health, /ready and /metrics over HTTP")
	fmt.Fprintf(w, "  %-13s %s\n", "cache-purge", "remove cached pages, optionally only under the given endpoints")
	fmt.Fprintf(w, "  %-13s %s\n", "metrics", "list exported Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags (also settable as "+envPrefix+"_<FLAG> environment variables):")
	fs.PrintDefaults()
}
