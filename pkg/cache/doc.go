// Package cache provides a small generic key-value cache with an in-memory
// LRU backend and a Redis backend, plus a stampede-safe GetOrSet.
//
// The API server uses it to remember positive ownership lookups:
//
//	c := cache.NewMemory[bool](cache.WithMaxEntries(10_000))
//	checker := cache.NewOwnership(store, c, time.Minute)
package cache
