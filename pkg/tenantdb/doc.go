// Package tenantdb provides per-tenant scoped database sessions over GORM.
//
// A Factory is built once at startup from provider configuration (postgres
// or mysql). Each unit of work asks the factory for a session; the factory
// reads the resolved tenant from the context, picks the tenant's connection
// string (falling back to the shared default database for tenants without
// dedicated infrastructure), and returns a GORM session with the tenant
// pinned into its context.
//
// Registered callbacks enforce the isolation invariant on every session:
// queries, updates and deletes against tenant-owned models are implicitly
// restricted to the ambient tenant's rows, and inserts are stamped with the
// ambient tenant id regardless of what the caller set on the entity.
// Soft-deleted rows are hidden from all normal queries by a separate filter
// that composes with, and is independent of, the tenant filter.
//
// There is no bypass through this factory; cross-tenant administration goes
// through the un-scoped tenant store instead.
package tenantdb
