// Package cache stores jolpica-f1 page bodies in Redis.
//
// Every page of a resource is cached under its own key, so a cached multi-page aggregation
// costs no requests against the upstream quota. Entries expire when the upstream freshness
// headers say so, or after a default TTL when the response carries none.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key, err := cache.PageKey(resource, page)
//	if err != nil {
//		return err
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		entry = cache.ResponseToEntry(resp, body, cache.DefaultTTL)
//		err = manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
//   - f1_cache_hits_total{layer="redis"} - Cache hits
//   - f1_cache_misses_total - Cache misses
//   - f1_cache_bytes_total{operation} - Bytes written (set) and served (get)
//   - f1_cache_errors_total{operation} - Cache operation errors
package cache
