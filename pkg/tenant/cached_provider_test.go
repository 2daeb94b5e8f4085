package tenant_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/pkg/tenant"
)

// fakeMetadataStore is a map-backed stand-in for Redis.
type fakeMetadataStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{data: make(map[string][]byte)}
}

func (f *fakeMetadataStore) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		cmd := redis.NewStringCmd(ctx)
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeMetadataStore) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		cmd := redis.NewStatusCmd(ctx)
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	f.data[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeMetadataStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		cmd := redis.NewIntCmd(ctx)
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(1, nil)
}

func TestCachedProvider(t *testing.T) {
	t.Parallel()

	acme := &tenant.Tenant{ID: "acme", IsActive: true, ValidUpto: time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)}

	t.Run("miss loads from source and populates cache", func(t *testing.T) {
		t.Parallel()

		source := newMockProvider(acme)
		remote := newFakeMetadataStore()
		provider := tenant.NewCachedProvider(source, remote, 0, slog.Default())

		got, err := provider.GetByID(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", got.ID)
		assert.Equal(t, 1, source.lookups)

		// Second read is served from cache.
		got, err = provider.GetByID(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", got.ID)
		assert.Equal(t, 1, source.lookups, "cache hit must not reach the store")
	})

	t.Run("unknown tenant fails with tenant not found", func(t *testing.T) {
		t.Parallel()

		source := newMockProvider()
		provider := tenant.NewCachedProvider(source, newFakeMetadataStore(), 0, slog.Default())

		_, err := provider.GetByID(context.Background(), "ghost")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("cache failure falls through to the store", func(t *testing.T) {
		t.Parallel()

		source := newMockProvider(acme)
		remote := newFakeMetadataStore()
		remote.failing = true
		provider := tenant.NewCachedProvider(source, remote, 0, slog.Default())

		got, err := provider.GetByID(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", got.ID)
		assert.Equal(t, 1, source.lookups)
	})

	t.Run("invalidate forces the next read back to the store", func(t *testing.T) {
		t.Parallel()

		source := newMockProvider(acme)
		remote := newFakeMetadataStore()
		provider := tenant.NewCachedProvider(source, remote, 0, slog.Default())

		_, err := provider.GetByID(context.Background(), "acme")
		require.NoError(t, err)
		require.NoError(t, provider.Invalidate(context.Background(), "acme"))

		_, err = provider.GetByID(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, 2, source.lookups)
	})
}
