package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when an identifier resolves to no tenant
	// in the authoritative store. Distinct from generic not-found errors so
	// the HTTP layer can surface it precisely.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantRequired is returned when a request on a tenant-requiring
	// path carries no resolvable tenant identifier.
	ErrTenantRequired = errors.New("tenant identifier is required")

	// ErrInvalidIdentifier is returned when an identifier fails slug
	// validation.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrTenantInactive is returned for deactivated tenants.
	ErrTenantInactive = errors.New("tenant is deactivated")

	// ErrTenantExpired is returned when the subscription window has passed.
	ErrTenantExpired = errors.New("tenant subscription has expired")

	// ErrNoTenantInContext is returned when a unit of work expects a
	// resolved tenant but the context carries none.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
