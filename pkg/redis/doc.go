// Package redis establishes and health-checks connections to the Redis
// server backing the distributed cache tier and the tenant metadata cache.
package redis
