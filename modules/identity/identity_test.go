package identity_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adminkit/adminkit/modules/identity"
	"github.com/adminkit/adminkit/pkg/rbac"
	"github.com/adminkit/adminkit/pkg/tenantdb"
)

type fakeSessions struct {
	calls int
}

func (f *fakeSessions) Session(context.Context) (*gorm.DB, error) {
	f.calls++
	return nil, errors.New("no database in test")
}

func newService(t *testing.T) (*identity.Service, *fakeSessions) {
	t.Helper()

	authz, err := rbac.NewAuthorizer(context.Background(), rbac.DefaultRoles())
	require.NoError(t, err)

	sessions := &fakeSessions{}
	return identity.NewService(sessions, authz, slog.New(slog.DiscardHandler)), sessions
}

func TestServiceCreateValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()

		svc, sessions := newService(t)
		_, err := svc.Create(context.Background(), identity.CreateParams{Email: "not-an-email"})
		require.ErrorIs(t, err, identity.ErrInvalidInput)
		assert.Zero(t, sessions.calls)
	})

	t.Run("rejects undefined role", func(t *testing.T) {
		t.Parallel()

		svc, sessions := newService(t)
		_, err := svc.Create(context.Background(), identity.CreateParams{
			Email:    "owner@acme.test",
			RoleName: "superuser",
		})
		require.ErrorIs(t, err, identity.ErrUnknownRole)
		assert.Zero(t, sessions.calls)
	})
}

func TestServiceAssignRoleValidation(t *testing.T) {
	t.Parallel()

	svc, sessions := newService(t)
	_, err := svc.AssignRole(context.Background(), uuid.Nil, "superuser")
	require.ErrorIs(t, err, identity.ErrUnknownRole)
	assert.Zero(t, sessions.calls)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	signedToken := func(t *testing.T, claims jwt.MapClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return token
	}

	capture := func(req *http.Request) (actor, role string) {
		var gotActor, gotRole string
		handler := identity.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotActor, _ = tenantdb.ActorFromContext(r.Context())
			gotRole, _ = rbac.RoleFromContext(r.Context())
		}))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		return gotActor, gotRole
	}

	t.Run("lifts subject and role from token", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{
			"sub":  "user-7",
			"role": "editor",
		}))

		actor, role := capture(req)
		assert.Equal(t, "user-7", actor)
		assert.Equal(t, "editor", role)
	})

	t.Run("no token passes through unauthenticated", func(t *testing.T) {
		t.Parallel()

		actor, role := capture(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, actor)
		assert.Empty(t, role)
	})

	t.Run("garbage token is ignored", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")

		actor, role := capture(req)
		assert.Empty(t, actor)
		assert.Empty(t, role)
	})
}
