// Package pg manages the PostgreSQL connection pool and schema migrations
// for the tenant store, the control-plane database that holds tenant
// metadata. Business data lives in per-tenant databases handled by the
// tenantdb package; this package is deliberately unaware of tenancy.
package pg
