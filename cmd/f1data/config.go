package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ramonrsv/f1-data/pkg/cache"
	"github.com/ramonrsv/f1-data/pkg/client"
	"github.com/ramonrsv/f1-data/pkg/jolpica"
	"github.com/ramonrsv/f1-data/pkg/logging"
	"github.com/ramonrsv/f1-data/pkg/pagination"
)

// envPrefix namespaces environment overrides, e.g. F1DATA_BASE_URL for --base-url.
const envPrefix = "F1DATA"

// Rate limit modes accepted by --rate-limit.
const (
	rateLimitOwned = "owned"
	rateLimitNone  = "none"
	rateLimitRedis = "redis"
)

// Output formats accepted by --format.
var formats = []string{"table", "csv", "markdown", "html"}

// config is the resolved CLI configuration. Precedence: flags, environment, config file,
// .env file, defaults.
type config struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	HTTPRetries  int
	RetryBackoff time.Duration

	// MaxPages bounds multi-page queries: 0 is unbounded, negative refuses them.
	MaxPages int

	RateLimit string
	RedisAddr string
	RedisDB   int
	CacheTTL  time.Duration
	NoCache   bool

	LogLevel  logging.LogLevel
	LogPretty bool

	Format      string
	MetricsAddr string
	ListenAddr  string
}

// newFlagSet declares every flag. Filter flags are declared too, so one FlagSet parses a
// whole command line.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("f1data", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("env-file", ".env", "dotenv file loaded into the environment when present")

	fs.String("base-url", jolpica.BaseURL, "jolpica-f1 API base URL")
	fs.String("user-agent", client.DefaultUserAgent, "User-Agent header")
	fs.Duration("timeout", 30*time.Second, "timeout of a single HTTP attempt")
	fs.Int("http-retries", 2, "retries after a failed attempt")
	fs.Duration("retry-backoff", time.Second, "pause between attempts")
	fs.Int("max-pages", 0, "page limit for multi-page queries (0 unbounded, -1 single page only)")

	fs.String("rate-limit", rateLimitOwned, "rate limiter: owned, none or redis")
	fs.String("redis-addr", "", "Redis address for the page cache and shared rate limiter")
	fs.Int("redis-db", 0, "Redis database")
	fs.Duration("cache-ttl", cache.DefaultTTL, "cache lifetime of pages without freshness headers")
	fs.Bool("no-cache", false, "do not cache pages even when Redis is configured")

	fs.String("log-level", string(logging.LevelWarn), "debug, info, warn or error")
	fs.Bool("log-pretty", false, "human-readable logs")

	fs.StringP("format", "f", "table", "output format: "+strings.Join(formats, ", "))
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	fs.String("listen", ":8080", "listen address of the serve command")

	addFilterFlags(fs)
	return fs
}

// loadConfig resolves the configuration from parsed flags, the environment, an optional config
// file and an optional .env file.
func loadConfig(fs *pflag.FlagSet) (config, error) {
	v := viper.New()

	envFile, _ := fs.GetString("env-file")
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			// Existing environment variables win over the file.
			if err := godotenv.Load(envFile); err != nil {
				return config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return config{}, fmt.Errorf("bind flags: %w", err)
	}

	level, err := logging.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return config{}, err
	}

	cfg := config{
		BaseURL:      v.GetString("base-url"),
		UserAgent:    v.GetString("user-agent"),
		Timeout:      v.GetDuration("timeout"),
		HTTPRetries:  v.GetInt("http-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		MaxPages:     v.GetInt("max-pages"),
		RateLimit:    strings.ToLower(v.GetString("rate-limit")),
		RedisAddr:    v.GetString("redis-addr"),
		RedisDB:      v.GetInt("redis-db"),
		CacheTTL:     v.GetDuration("cache-ttl"),
		NoCache:      v.GetBool("no-cache"),
		LogLevel:     level,
		LogPretty:    v.GetBool("log-pretty"),
		Format:       strings.ToLower(v.GetString("format")),
		MetricsAddr:  v.GetString("metrics-addr"),
		ListenAddr:   v.GetString("listen"),
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch c.RateLimit {
	case rateLimitOwned, rateLimitNone:
	case rateLimitRedis:
		if c.RedisAddr == "" {
			return errors.New("rate-limit redis requires redis-addr")
		}
	default:
		return fmt.Errorf("unknown rate-limit mode %q (want owned, none or redis)", c.RateLimit)
	}

	valid := false
	for _, f := range formats {
		valid = valid || c.Format == f
	}
	if !valid {
		return fmt.Errorf("unknown format %q (want %s)", c.Format, strings.Join(formats, ", "))
	}

	if c.HTTPRetries < 0 {
		return fmt.Errorf("http-retries must be >= 0 (got %d)", c.HTTPRetries)
	}
	return nil
}

// multiPage converts MaxPages to a MultiPageOption.
func (c config) multiPage() pagination.MultiPageOption {
	switch {
	case c.MaxPages < 0:
		return pagination.Disabled()
	case c.MaxPages == 0:
		return pagination.Enabled(nil)
	default:
		return pagination.MaxPages(c.MaxPages)
	}
}
