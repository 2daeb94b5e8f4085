package tenant

import (
	"context"
	"time"
)

// DefaultTenantID is the distinguished root tenant seeded at startup. The
// root tenant hosts the cross-tenant administrative surface and is exempt
// from subscription expiry (but not from deactivation).
const DefaultTenantID = "root"

// Tenant holds the metadata the request pipeline needs: which database the
// tenant lives in and whether it may be served at all.
type Tenant struct {
	// ID is the tenant discriminator stamped into every tenant-owned row.
	// Immutable after creation.
	ID   string `json:"id"`
	Name string `json:"name"`

	// ConnectionString points at the tenant's dedicated database. Empty
	// means the tenant shares the default database; isolation then relies
	// entirely on the discriminator column.
	ConnectionString string `json:"connection_string,omitempty"`

	AdminEmail string `json:"admin_email"`

	// IsActive gates every request for this tenant.
	IsActive bool `json:"is_active"`

	// ValidUpto is the subscription expiry. Expiry is computed at
	// authentication time, never persisted as a state.
	ValidUpto time.Time `json:"valid_upto"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether this is the distinguished root tenant.
func (t *Tenant) IsRoot() bool {
	return t.ID == DefaultTenantID
}

// Expired reports whether the subscription window has passed. The root
// tenant never expires.
func (t *Tenant) Expired(now time.Time) bool {
	if t.IsRoot() {
		return false
	}
	return now.After(t.ValidUpto)
}

// Validate checks the tenant against its activity and validity windows.
// Returns ErrTenantInactive or ErrTenantExpired so callers can surface
// distinct authorization failures.
func (t *Tenant) Validate(now time.Time) error {
	if !t.IsActive {
		return ErrTenantInactive
	}
	if t.Expired(now) {
		return ErrTenantExpired
	}
	return nil
}

// Provider loads tenant metadata by identifier.
// Returns ErrTenantNotFound if no tenant matches.
type Provider interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
}

// Storage is the authoritative tenant store surface. It is intentionally
// un-scoped: tenant management is the designated cross-tenant operation.
type Storage interface {
	Provider
	GetAll(ctx context.Context) ([]Tenant, error)
	Create(ctx context.Context, t *Tenant) error
	Update(ctx context.Context, t *Tenant) error
}
