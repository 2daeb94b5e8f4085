package todo_test

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

	"github.com/adminkit/adminkit/modules/todo"
	"github.com/adminkit/adminkit/pkg/cache"
	"github.com/adminkit/adminkit/pkg/tenant"
)

type fakeSessions struct {
	calls int
}

func (f *fakeSessions) Session(context.Context) (*gorm.DB, error) {
	f.calls++
	return nil, errors.New("no database in test")
}

type fakeCache struct {
	entries map[string][]byte
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ ...cache.EntryOption) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) Remove(_ context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

func TestServiceGetCached(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	raw, err := json.Marshal(&todo.Todo{Title: "Ship release", Done: false})
	require.NoError(t, err)

	sessions := &fakeSessions{}
	store := &fakeCache{entries: map[string][]byte{
		cache.Key("todo", "acme", id.String()): raw,
	}}

	svc := todo.NewService(sessions, store, slog.New(slog.DiscardHandler))
	ctx := tenant.WithTenant(context.Background(), &tenant.Tenant{ID: "acme"})

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ship release", got.Title)
	assert.Zero(t, sessions.calls)
}

func TestServiceCreateValidation(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{}
	svc := todo.NewService(sessions, nil, slog.New(slog.DiscardHandler))

	_, err := svc.Create(context.Background(), todo.CreateParams{})
	require.ErrorIs(t, err, todo.ErrInvalidInput)
	assert.Zero(t, sessions.calls)
}
