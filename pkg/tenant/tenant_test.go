package tenant_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adminkit/adminkit/pkg/tenant"
)

func TestTenantValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active tenant within validity window passes", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{ID: "acme", IsActive: true, ValidUpto: now.Add(24 * time.Hour)}
		assert.NoError(t, tn.Validate(now))
	})

	t.Run("inactive tenant is rejected", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{ID: "beta", IsActive: false, ValidUpto: now.Add(24 * time.Hour)}
		assert.ErrorIs(t, tn.Validate(now), tenant.ErrTenantInactive)
	})

	t.Run("expired non-root tenant is rejected even when active", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{ID: "acme", IsActive: true, ValidUpto: now.Add(-time.Hour)}
		assert.ErrorIs(t, tn.Validate(now), tenant.ErrTenantExpired)
	})

	t.Run("root tenant is exempt from expiry only", func(t *testing.T) {
		t.Parallel()

		root := &tenant.Tenant{ID: tenant.DefaultTenantID, IsActive: true, ValidUpto: now.Add(-time.Hour)}
		assert.NoError(t, root.Validate(now))

		// Deactivation still applies to root.
		root.IsActive = false
		assert.ErrorIs(t, root.Validate(now), tenant.ErrTenantInactive)
	})

	t.Run("inactive check wins over expiry", func(t *testing.T) {
		t.Parallel()

		tn := &tenant.Tenant{ID: "acme", IsActive: false, ValidUpto: now.Add(-time.Hour)}
		assert.ErrorIs(t, tn.Validate(now), tenant.ErrTenantInactive)
	})
}

func TestTenantExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tn := &tenant.Tenant{ID: "acme", ValidUpto: now.Add(-time.Minute)}
	assert.True(t, tn.Expired(now))

	tn.ValidUpto = now.Add(time.Minute)
	assert.False(t, tn.Expired(now))

	root := &tenant.Tenant{ID: tenant.DefaultTenantID, ValidUpto: now.Add(-time.Minute)}
	assert.False(t, root.Expired(now))
}
