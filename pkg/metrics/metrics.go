// Package metrics exposes the Prometheus metrics of the f1-data client.
// All metrics are defined in their respective packages (client, cache, pagination, ratelimit)
// to maintain modularity and avoid circular dependencies.
//
// This package serves them over HTTP and lists what is available.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the f1-data client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry holds.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metric describes one exported metric.
type Metric struct {
	Name    string
	Type    string
	Labels  []string
	Help    string
	Package string
}

// Catalogue lists every metric the client packages export.
var Catalogue = []Metric{
	{"f1_requests_total", "counter", []string{"resource", "status"}, "Requests by resource and HTTP status, or cached/network_error", "client"},
	{"f1_request_duration_seconds", "histogram", []string{"resource"}, "Page fetch duration including rate limit waits and retries", "client"},
	{"f1_errors_total", "counter", []string{"class"}, "Errors by class (client, server, rate_limit, network, decode)", "client"},
	{"f1_retries_total", "counter", []string{"error_class"}, "Retry attempts by error class", "client"},
	{"f1_retry_backoff_seconds", "histogram", []string{"error_class"}, "Backoff duration by error class", "client"},
	{"f1_retry_exhausted_total", "counter", []string{"error_class"}, "Requests that exhausted their attempts", "client"},
	{"f1_cache_hits_total", "counter", []string{"layer"}, "Cache hits by layer", "cache"},
	{"f1_cache_misses_total", "counter", nil, "Cache misses", "cache"},
	{"f1_cache_bytes_total", "counter", []string{"operation"}, "Bytes written to and served from the cache", "cache"},
	{"f1_cache_errors_total", "counter", []string{"operation"}, "Cache operation errors", "cache"},
	{"f1_pages_fetched_total", "counter", nil, "Pages fetched by the multi-page aggregator", "pagination"},
	{"f1_aggregations_total", "counter", []string{"outcome"}, "Aggregations by outcome", "pagination"},
	{"f1_rate_limit_acquires_total", "counter", []string{"mode"}, "Rate limiter acquisitions by limiter mode", "ratelimit"},
	{"f1_rate_limit_wait_seconds", "histogram", nil, "Time spent waiting for the rate limiter", "ratelimit"},
	{"f1_rate_limit_redis_errors_total", "counter", nil, "Redis limiter failures that fell back to the local limiter", "ratelimit"},
}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (Metric, bool) {
	for _, m := range Catalogue {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Filter returns the catalogue entries whose name contains substr.
func Filter(substr string) []Metric {
	var out []Metric
	for _, m := range Catalogue {
		if strings.Contains(m.Name, substr) {
			out = append(out, m)
		}
	}
	return out
}

// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(f1_cache_hits_total[5m])) /
//   (sum(rate(f1_cache_hits_total[5m])) + sum(rate(f1_cache_misses_total[5m])))
//
//   # Time spent throttled
//   rate(f1_rate_limit_wait_seconds_sum[5m])
//
//   # Request Error Rate
//   rate(f1_errors_total[5m])
//
//   # P95 Page Latency
//   histogram_quantile(0.95, rate(f1_request_duration_seconds_bucket[5m]))
//
//   # Multi-page queries refused
//   rate(f1_aggregations_total{outcome=~"multi_page_rejected|exceeded_max_pages"}[1h])
