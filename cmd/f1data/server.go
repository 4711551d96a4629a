package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ramonrsv/f1-data/pkg/client"
	"github.com/ramonrsv/f1-data/pkg/jolpica"
	"github.com/ramonrsv/f1-data/pkg/metrics"
	"github.com/ramonrsv/f1-data/pkg/pagination"
)

// queryTimeout bounds one served query, including every page and retry.
const queryTimeout = 2 * time.Minute

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports unready while a configured Redis is unreachable.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// queryHandler serves /query/<command>?season=2023&round=4&format=html, running the same
// queries as the command line.
func queryHandler(f1Client *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/query/"), "/")
		cmd, ok := commands[name]
		if !ok {
			http.Error(w, fmt.Sprintf("unknown query %q", name), http.StatusNotFound)
			return
		}

		params := r.URL.Query()
		filters, err := parseFilters(func(key string) (string, bool) {
			return params.Get(key), params.Has(key)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
		defer cancel()

		t, err := cmd.run(ctx, f1Client, filters)
		if err != nil {
			status := statusFor(err)
			logger.Warn().Err(err).Str("query", name).Int("status", status).Msg("Query failed")
			http.Error(w, err.Error(), status)
			return
		}

		format := params.Get("format")
		w.Header().Set("Content-Type", contentType(format))
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, render(t, format))
	}
}

// statusFor maps a query error to an HTTP status.
func statusFor(err error) int {
	var te *client.TransportError
	switch {
	case errors.Is(err, jolpica.ErrInvalidFilters):
		return http.StatusBadRequest
	case errors.Is(err, jolpica.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pagination.ErrMultiPage), errors.Is(err, pagination.ErrExceededMaxPageCount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &te) && te.Class == client.ErrorClassClient:
		return te.StatusCode
	default:
		return http.StatusBadGateway
	}
}

func contentType(format string) string {
	switch format {
	case "csv":
		return "text/csv; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// newServeMux wires every endpoint of the serve command.
func newServeMux(f1Client *client.Client, redisClient *redis.Client, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(redisClient))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/query/", queryHandler(f1Client, logger))
	return mux
}

// newMetricsServer serves only /metrics, for query commands run with --metrics-addr.
func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
