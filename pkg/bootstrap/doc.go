// Package bootstrap prepares the tenant store and every tenant database at
// application startup.
//
// The initializer runs an ordered sequence: migrate the tenant store, seed
// the root tenant, then walk every registered tenant and bring its database
// up to date (schema migration followed by the registered seeders). Each
// tenant is an error boundary; a broken tenant database is reported and
// skipped so the rest of the fleet still comes up.
package bootstrap
