// Package cache provides a Redis-backed store for composition results.
//
// The cache implements compose.Cache with best-effort semantics: Redis
// failures surface as misses, never as composition errors. Keys already
// incorporate the taxonomy build id, so a rebuilt taxonomy never serves
// results computed against an older tree.
//
// Example:
//
//	store, err := cache.NewRedisCache(cache.RedisOptions{
//		URL: "redis://localhost:6379",
//		TTL: time.Hour,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	engine, err := compose.NewEngine(graph, registry, compose.WithCache(store))
package cache
