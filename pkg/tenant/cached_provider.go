package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultMetadataTTL bounds how long tenant metadata may be served from the
// distributed cache. A tenant deactivated mid-window may still be served
// for up to this long; lifecycle mutations invalidate eagerly to shrink
// that window in the common case.
const DefaultMetadataTTL = 60 * time.Minute

// metadataStore is the slice of the Redis API the cached provider uses.
type metadataStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type warnLogger interface {
	WarnContext(ctx context.Context, msg string, args ...any)
}

// CachedProvider is a read-through distributed cache in front of the
// authoritative tenant store. Cache failures fall through to the source;
// source failures are fatal for the request, because without tenant
// metadata no data access is possible.
type CachedProvider struct {
	source Provider
	remote metadataStore
	ttl    time.Duration
	log    warnLogger
}

// NewCachedProvider wraps source with a Redis-backed metadata cache.
// A non-positive ttl falls back to DefaultMetadataTTL.
func NewCachedProvider(source Provider, remote metadataStore, ttl time.Duration, log warnLogger) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultMetadataTTL
	}
	return &CachedProvider{source: source, remote: remote, ttl: ttl, log: log}
}

func metadataKey(id string) string {
	return "tenant:meta:" + id
}

// GetByID returns the cached tenant if present, otherwise loads from the
// authoritative store and populates the cache.
func (p *CachedProvider) GetByID(ctx context.Context, id string) (*Tenant, error) {
	key := metadataKey(id)

	raw, err := p.remote.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t Tenant
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
		p.log.WarnContext(ctx, "tenant: malformed cached metadata, reloading", "tenant_id", id)
	case errors.Is(err, redis.Nil):
		// plain miss
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		p.log.WarnContext(ctx, "tenant: metadata cache unavailable, using store", "tenant_id", id, "error", err)
	}

	t, err := p.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(t); err == nil {
		if err := p.remote.Set(ctx, key, raw, p.ttl).Err(); err != nil && !errors.Is(err, context.Canceled) {
			p.log.WarnContext(ctx, "tenant: failed to cache metadata", "tenant_id", id, "error", err)
		}
	}

	return t, nil
}

// Invalidate drops the cached metadata for a tenant. Called by the
// lifecycle service after every mutation so stale activity and validity
// flags do not outlive the change by the full TTL.
func (p *CachedProvider) Invalidate(ctx context.Context, id string) error {
	if err := p.remote.Del(ctx, metadataKey(id)).Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		p.log.WarnContext(ctx, "tenant: failed to invalidate cached metadata", "tenant_id", id, "error", err)
	}
	return nil
}
