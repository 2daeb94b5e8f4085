package tenant_test

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/pkg/tenant"
)

func bearerToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestClaimResolver(t *testing.T) {
	t.Parallel()

	t.Run("extracts tenant claim from bearer token", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewClaimResolver("tenant")
		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("Authorization", bearerToken(t, jwt.MapClaims{"tenant": "acme"}))

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("returns empty without authorization header", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewClaimResolver("tenant")
		req := httptest.NewRequest("GET", "/quizzes", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("returns empty when claim is absent", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewClaimResolver("tenant")
		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("Authorization", bearerToken(t, jwt.MapClaims{"sub": "user-1"}))

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("fails on malformed token", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewClaimResolver("tenant")
		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		_, err := resolve(req)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestHeaderResolver(t *testing.T) {
	t.Parallel()

	t.Run("extracts tenant from header", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewHeaderResolver("")
		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("X-Tenant-ID", "acme")

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("rejects invalid identifier", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.NewHeaderResolver("")
		req := httptest.NewRequest("GET", "/quizzes", nil)
		req.Header.Set("X-Tenant-ID", "../etc/passwd")

		_, err := resolve(req)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestQueryResolver(t *testing.T) {
	t.Parallel()

	resolve := tenant.NewQueryResolver("")
	req := httptest.NewRequest("GET", "/quizzes?tenant=acme", nil)

	id, err := resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "acme", id)
}

func TestDefaultResolver(t *testing.T) {
	t.Parallel()

	t.Run("claim wins over header and query", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.DefaultResolver()
		req := httptest.NewRequest("GET", "/quizzes?tenant=from-query", nil)
		req.Header.Set("Authorization", bearerToken(t, jwt.MapClaims{"tenant": "from-claim"}))
		req.Header.Set("X-Tenant-ID", "from-header")

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "from-claim", id)
	})

	t.Run("header wins over query", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.DefaultResolver()
		req := httptest.NewRequest("GET", "/quizzes?tenant=from-query", nil)
		req.Header.Set("X-Tenant-ID", "from-header")

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "from-header", id)
	})

	t.Run("query is the final fallback", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.DefaultResolver()
		req := httptest.NewRequest("GET", "/quizzes?tenant=acme", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", id)
	})

	t.Run("no signal yields empty identifier", func(t *testing.T) {
		t.Parallel()

		resolve := tenant.DefaultResolver()
		req := httptest.NewRequest("GET", "/quizzes", nil)

		id, err := resolve(req)
		require.NoError(t, err)
		assert.Empty(t, id)
	})
}
