package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// localTTLRatio derives the L1 expiration from the L2 sliding window. The
// local copy must expire before the distributed one so a still-live L2 entry
// gets re-read (and its sliding window re-armed) instead of going stale
// behind a longer-lived local copy.
const localTTLRatio = 0.8

var (
	// ErrInvalidKey is returned for empty or whitespace-only keys. Unlike
	// infrastructure failures this is a usage error and is never swallowed.
	ErrInvalidKey = errors.New("cache key must not be empty")
)

type Config struct {
	KeyPrefix          string        `env:"CACHE_KEY_PREFIX"`
	SlidingExpiration  time.Duration `env:"CACHE_SLIDING_EXPIRATION" envDefault:"60s"`
	AbsoluteExpiration time.Duration `env:"CACHE_ABSOLUTE_EXPIRATION"` // 0 disables the ceiling
	LocalCapacity      int           `env:"CACHE_LOCAL_CAPACITY" envDefault:"10000"`
}

// redisClient is the slice of the Redis API the distributed tier uses.
// redis.UniversalClient satisfies it; tests substitute a fake.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type logger interface {
	WarnContext(ctx context.Context, msg string, args ...any)
}

// envelope is the L2 wire format. The sliding window and absolute deadline
// travel with the value so any reader can re-arm expirations consistently.
type envelope struct {
	Value    json.RawMessage `json:"v"`
	Sliding  time.Duration   `json:"s"`
	Deadline time.Time       `json:"d,omitzero"`
}

type localEntry struct {
	value     json.RawMessage
	sliding   time.Duration
	deadline  time.Time
	expiresAt time.Time
}

// Service is the two-tier cache. Safe for concurrent use.
type Service struct {
	remote redisClient
	local  *LRU[string, *localEntry]
	cfg    Config
	log    logger
	now    func() time.Time
}

// New creates a two-tier cache over the given Redis client.
func New(remote redisClient, cfg Config, log logger) *Service {
	if cfg.SlidingExpiration <= 0 {
		cfg.SlidingExpiration = 60 * time.Second
	}
	if cfg.LocalCapacity <= 0 {
		cfg.LocalCapacity = 10000
	}
	return &Service{
		remote: remote,
		local:  NewLRU[string, *localEntry](cfg.LocalCapacity, nil),
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// EntryOption overrides expiration settings for a single Set call.
type EntryOption func(*entryOptions)

type entryOptions struct {
	sliding  time.Duration
	absolute time.Duration
}

// WithSlidingExpiration overrides the configured sliding window.
func WithSlidingExpiration(d time.Duration) EntryOption {
	return func(o *entryOptions) {
		if d > 0 {
			o.sliding = d
		}
	}
}

// WithAbsoluteExpiration overrides the configured absolute ceiling.
func WithAbsoluteExpiration(d time.Duration) EntryOption {
	return func(o *entryOptions) {
		if d > 0 {
			o.absolute = d
		}
	}
}

// Key builds a colon-separated cache key. Callers caching tenant-scoped data
// must include the tenant id as one of the parts.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get looks up key in L1 then L2, unmarshaling the hit into dest. A found L2
// entry re-arms its sliding window and repopulates L1. Returns false on both
// miss and infrastructure failure; the error is non-nil only for usage
// errors and cancellation.
func (s *Service) Get(ctx context.Context, key string, dest any) (bool, error) {
	k, err := s.normalizeKey(key)
	if err != nil {
		return false, err
	}

	if entry, ok := s.local.Get(k); ok {
		if s.now().Before(entry.expiresAt) {
			return true, json.Unmarshal(entry.value, dest)
		}
		s.local.Remove(k)
	}

	raw, err := s.remote.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if isCancellation(err) {
			return false, err
		}
		s.log.WarnContext(ctx, "cache: distributed get failed", "key", k, "error", err)
		return false, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.WarnContext(ctx, "cache: malformed distributed entry", "key", k, "error", err)
		return false, nil
	}

	if !env.Deadline.IsZero() && s.now().After(env.Deadline) {
		if err := s.remote.Del(ctx, k).Err(); err != nil && !isCancellation(err) {
			s.log.WarnContext(ctx, "cache: failed to drop expired entry", "key", k, "error", err)
		}
		return false, nil
	}

	ttl := s.remoteTTL(env)
	if err := s.remote.Expire(ctx, k, ttl).Err(); err != nil && !isCancellation(err) {
		s.log.WarnContext(ctx, "cache: failed to re-arm sliding window", "key", k, "error", err)
	}

	s.putLocal(k, env.Value, env.Sliding, env.Deadline)

	return true, json.Unmarshal(env.Value, dest)
}

// Set writes value to both tiers. Tier writes are best-effort and
// independent: an unreachable distributed tier does not prevent the local
// write, and vice versa.
func (s *Service) Set(ctx context.Context, key string, value any, opts ...EntryOption) error {
	k, err := s.normalizeKey(key)
	if err != nil {
		return err
	}

	o := entryOptions{sliding: s.cfg.SlidingExpiration, absolute: s.cfg.AbsoluteExpiration}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	env := envelope{Value: raw, Sliding: o.sliding}
	if o.absolute > 0 {
		env.Deadline = s.now().Add(o.absolute)
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	if err := s.remote.Set(ctx, k, payload, s.remoteTTL(env)).Err(); err != nil {
		if isCancellation(err) {
			return err
		}
		s.log.WarnContext(ctx, "cache: distributed set failed", "key", k, "error", err)
	}

	s.putLocal(k, raw, o.sliding, env.Deadline)
	return nil
}

// Remove deletes key from both tiers.
func (s *Service) Remove(ctx context.Context, key string) error {
	k, err := s.normalizeKey(key)
	if err != nil {
		return err
	}

	s.local.Remove(k)

	if err := s.remote.Del(ctx, k).Err(); err != nil {
		if isCancellation(err) {
			return err
		}
		s.log.WarnContext(ctx, "cache: distributed delete failed", "key", k, "error", err)
	}
	return nil
}

// Refresh re-arms the sliding window of an existing entry in both tiers
// without altering its value. Refreshing a missing key is a no-op.
func (s *Service) Refresh(ctx context.Context, key string) error {
	k, err := s.normalizeKey(key)
	if err != nil {
		return err
	}

	raw, err := s.remote.Get(ctx, k).Bytes()
	if err != nil {
		if isCancellation(err) {
			return err
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "cache: distributed refresh failed", "key", k, "error", err)
		}
		// The distributed entry is gone or unreachable; fall back to
		// re-arming the local copy from its own recorded window so both
		// tiers stay as consistent as circumstances allow.
		if entry, ok := s.local.Get(k); ok {
			s.putLocal(k, entry.value, entry.sliding, entry.deadline)
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.WarnContext(ctx, "cache: malformed distributed entry", "key", k, "error", err)
		return nil
	}

	if err := s.remote.Expire(ctx, k, s.remoteTTL(env)).Err(); err != nil && !isCancellation(err) {
		s.log.WarnContext(ctx, "cache: failed to re-arm sliding window", "key", k, "error", err)
	}

	s.putLocal(k, env.Value, env.Sliding, env.Deadline)
	return nil
}

func (s *Service) normalizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}
	if s.cfg.KeyPrefix != "" && !strings.HasPrefix(key, s.cfg.KeyPrefix) {
		return s.cfg.KeyPrefix + key, nil
	}
	return key, nil
}

// putLocal stores a local copy expiring at 80% of the sliding window, capped
// at the absolute deadline so L1 can never outlive the ceiling.
func (s *Service) putLocal(key string, value json.RawMessage, sliding time.Duration, deadline time.Time) {
	expiresAt := s.now().Add(time.Duration(float64(sliding) * localTTLRatio))
	if !deadline.IsZero() && deadline.Before(expiresAt) {
		expiresAt = deadline
	}
	s.local.Put(key, &localEntry{
		value:     value,
		sliding:   sliding,
		deadline:  deadline,
		expiresAt: expiresAt,
	})
}

// remoteTTL caps the sliding window at the remaining time before the
// absolute deadline, if one is set.
func (s *Service) remoteTTL(env envelope) time.Duration {
	ttl := env.Sliding
	if !env.Deadline.IsZero() {
		if remaining := env.Deadline.Sub(s.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	return ttl
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
