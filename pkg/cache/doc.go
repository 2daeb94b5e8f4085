// Package cache provides a two-tier read-through/write-through cache: a
// bounded in-process tier (L1) in front of a Redis-backed distributed tier
// (L2).
//
// Values are JSON-serialized and keyed by string. The cache is tenant
// agnostic; callers that cache tenant-scoped data must embed the tenant id
// in the key (see the Key helper). The L1 expiration is derived as a fixed
// fraction of the L2 sliding window so the local copy refreshes from L2
// before L2 itself would expire.
//
// The cache is a performance optimization, never a correctness dependency:
// infrastructure failures are logged and treated as misses or no-ops so the
// caller's authoritative-store fallback path always works.
package cache
