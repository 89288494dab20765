// Package redis opens a go-redis client from environment configuration and
// provides the health check and shutdown hooks the server registers for it.
//
// Redis is optional: an empty REDIS_URL leaves Enabled false and the server
// falls back to an in-process cache.
package redis
