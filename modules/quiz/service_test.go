package quiz_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adminkit/adminkit/modules/quiz"
	"github.com/adminkit/adminkit/pkg/cache"
	"github.com/adminkit/adminkit/pkg/tenant"
)

type fakeSessions struct {
	calls int
	err   error
}

func (f *fakeSessions) Session(context.Context) (*gorm.DB, error) {
	f.calls++
	if f.err == nil {
		f.err = errors.New("no database in test")
	}
	return nil, f.err
}

type fakeCache struct {
	entries  map[string][]byte
	getKeys  []string
	failing  bool
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	f.getKeys = append(f.getKeys, key)
	if f.failing {
		return false, errors.New("redis unreachable")
	}
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ ...cache.EntryOption) error {
	f.setCalls++
	if f.failing {
		return errors.New("redis unreachable")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) Remove(_ context.Context, key string) error {
	if f.failing {
		return errors.New("redis unreachable")
	}
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) prime(t *testing.T, key string, q *quiz.Quiz) {
	t.Helper()
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	f.entries[key] = raw
}

func tenantCtx(id string) context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, IsActive: true})
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestServiceGet(t *testing.T) {
	t.Parallel()

	t.Run("cache hit never touches the database", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		cached := &quiz.Quiz{Title: "Onboarding", QuestionCount: 7}

		sessions := &fakeSessions{}
		store := newFakeCache()
		store.prime(t, cache.Key("quiz", "acme", id.String()), cached)

		svc := quiz.NewService(sessions, store, discard())
		got, err := svc.Get(tenantCtx("acme"), id)
		require.NoError(t, err)

		assert.Equal(t, "Onboarding", got.Title)
		assert.Equal(t, 7, got.QuestionCount)
		assert.Zero(t, sessions.calls)
	})

	t.Run("cache failure falls through to the database", func(t *testing.T) {
		t.Parallel()

		sessions := &fakeSessions{}
		store := newFakeCache()
		store.failing = true

		svc := quiz.NewService(sessions, store, discard())
		_, err := svc.Get(tenantCtx("acme"), uuid.New())

		require.Error(t, err)
		assert.Equal(t, 1, sessions.calls, "database must be consulted when the cache is down")
	})

	t.Run("cache keys are tenant scoped", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		store := newFakeCache()
		svc := quiz.NewService(&fakeSessions{}, store, discard())

		_, _ = svc.Get(tenantCtx("acme"), id)
		_, _ = svc.Get(tenantCtx("globex"), id)

		require.Len(t, store.getKeys, 2)
		assert.Equal(t, cache.Key("quiz", "acme", id.String()), store.getKeys[0])
		assert.Equal(t, cache.Key("quiz", "globex", id.String()), store.getKeys[1])
		assert.NotEqual(t, store.getKeys[0], store.getKeys[1])
	})

	t.Run("nil cache degrades to database only", func(t *testing.T) {
		t.Parallel()

		sessions := &fakeSessions{}
		svc := quiz.NewService(sessions, nil, discard())

		_, err := svc.Get(tenantCtx("acme"), uuid.New())
		require.Error(t, err)
		assert.Equal(t, 1, sessions.calls)
	})
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty title before opening a session", func(t *testing.T) {
		t.Parallel()

		sessions := &fakeSessions{}
		svc := quiz.NewService(sessions, nil, discard())

		_, err := svc.Create(tenantCtx("acme"), quiz.CreateParams{Description: "no title"})
		require.ErrorIs(t, err, quiz.ErrInvalidInput)
		assert.Zero(t, sessions.calls)
	})
}
