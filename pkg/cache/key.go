package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/ramonrsv/f1-data/pkg/jolpica"
)

// KeyPrefix namespaces cache entries in Redis.
const KeyPrefix = "f1"

// CacheKey represents a unique identifier for a cached page.
type CacheKey struct {
	// Endpoint is the resource path (e.g., "/2023/4/results")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"limit": "100", "offset": "0"})
	QueryParams url.Values
}

// PageKey returns the key of one page of resource.
func PageKey(resource jolpica.Resource, page jolpica.Page) (CacheKey, error) {
	endpoint, err := resource.Endpoint()
	if err != nil {
		return CacheKey{}, err
	}
	return CacheKey{
		Endpoint: endpoint,
		QueryParams: url.Values{
			"limit":  []string{fmt.Sprint(page.Limit)},
			"offset": []string{fmt.Sprint(page.Offset)},
		},
	}, nil
}

// String generates a deterministic cache key string.
// Format: f1:endpoint:query1=val1:query2=val2
//
// Example:
//
//	f1:2023/4/results:limit=100:offset=0
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
