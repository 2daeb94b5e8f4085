package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/pkg/tenant"
)

// mockProvider is an in-memory tenant source that counts lookups.
type mockProvider struct {
	mu      sync.Mutex
	tenants map[string]*tenant.Tenant
	lookups int
}

func newMockProvider(tenants ...*tenant.Tenant) *mockProvider {
	p := &mockProvider{tenants: make(map[string]*tenant.Tenant)}
	for _, t := range tenants {
		p.tenants[t.ID] = t
	}
	return p
}

func (p *mockProvider) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	if t, ok := p.tenants[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testClock() func() time.Time {
	return func() time.Time { return testNow }
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("header-resolved tenant lands in context", func(t *testing.T) {
		t.Parallel()

		// Scenario: "acme" has an empty connection string, is active, and
		// never expires; a request with the tenant header resolves it.
		acme := &tenant.Tenant{
			ID:        "acme",
			IsActive:  true,
			ValidUpto: time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		provider := newMockProvider(acme)
		mw := tenant.Middleware(tenant.DefaultResolver(), provider, tenant.WithClock(testClock()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := tenant.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "acme", got.ID)
			assert.Empty(t, got.ConnectionString, "empty connection string means the shared default database")
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing identifier is unauthorized", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		mw := tenant.Middleware(tenant.DefaultResolver(), provider, tenant.WithClock(testClock()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without a tenant")
		}))

		req := httptest.NewRequest("GET", "/quizzes", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Zero(t, provider.lookups, "no store access without an identifier")
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		mw := tenant.Middleware(tenant.DefaultResolver(), provider,
			tenant.WithClock(testClock()),
			tenant.WithSkipPaths("/healthz", "/signup"))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown tenant is not found", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider()
		mw := tenant.Middleware(tenant.DefaultResolver(), provider, tenant.WithClock(testClock()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for unknown tenants")
		}))

		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("X-Tenant-ID", "ghost")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deactivated tenant fails before data access", func(t *testing.T) {
		t.Parallel()

		// Scenario: "beta" is deactivated; a request carrying the claim
		// resolves the record but is rejected before the handler runs.
		beta := &tenant.Tenant{
			ID:        "beta",
			IsActive:  false,
			ValidUpto: testNow.Add(24 * time.Hour),
		}
		provider := newMockProvider(beta)
		mw := tenant.Middleware(tenant.DefaultResolver(), provider, tenant.WithClock(testClock()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for deactivated tenants")
		}))

		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("Authorization", bearerToken(t, jwt.MapClaims{"tenant": "beta"}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "deactivated")
		assert.Equal(t, 1, provider.lookups, "the record is resolved, then rejected")
	})

	t.Run("expired tenant is rejected with a distinct message", func(t *testing.T) {
		t.Parallel()

		stale := &tenant.Tenant{ID: "stale", IsActive: true, ValidUpto: testNow.Add(-time.Hour)}
		provider := newMockProvider(stale)
		mw := tenant.Middleware(tenant.DefaultResolver(), provider, tenant.WithClock(testClock()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for expired tenants")
		}))

		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("X-Tenant-ID", "stale")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("root tenant passes despite past expiry", func(t *testing.T) {
		t.Parallel()

		root := &tenant.Tenant{ID: tenant.DefaultTenantID, IsActive: true, ValidUpto: testNow.Add(-time.Hour)}
		provider := newMockProvider(root)
		mw := tenant.Middleware(tenant.DefaultResolver(), provider, tenant.WithClock(testClock()))

		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/tenants", nil)
		req.Header.Set("X-Tenant-ID", tenant.DefaultTenantID)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
